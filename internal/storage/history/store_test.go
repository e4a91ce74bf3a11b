package history

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/libra/internal/domain"
)

func TestAppend_PreservesInsertionOrder(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)

	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(mustSample(base.Add(time.Duration(i)*time.Second), "Squat", 40+int64(i), 60-int64(i))))
	}

	collected := collect(store)

	require.Len(t, collected, 5)
	for i, sample := range collected {
		require.Equal(t, base.Add(time.Duration(i)*time.Second), sample.Timestamp)
		require.True(t, decimal.NewFromInt(40+int64(i)).Equal(sample.Left))
	}
}

func TestSeedThenAppend_OrderAndLength(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)

	base := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)

	// seven days of pre-populated history
	seeded := make([]domain.BalanceSample, 0, 7)
	for day := 0; day < 7; day++ {
		seeded = append(seeded, mustSample(base.AddDate(0, 0, day), "Bench Press", 45, 55))
	}
	require.NoError(t, store.Seed(seeded))

	appendBase := base.AddDate(0, 0, 7)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(mustSample(appendBase.Add(time.Duration(i)*time.Second), "Bench Press", 50, 50)))
	}

	collected := collect(store)

	require.Len(t, collected, 10)
	for day := 0; day < 7; day++ {
		require.Equal(t, base.AddDate(0, 0, day), collected[day].Timestamp)
		require.True(t, decimal.NewFromInt(45).Equal(collected[day].Left))
		require.True(t, decimal.NewFromInt(55).Equal(collected[day].Right))
	}
	for i := 0; i < 3; i++ {
		require.Equal(t, appendBase.Add(time.Duration(i)*time.Second), collected[7+i].Timestamp)
	}
}

func TestSeed_NonEmptyStore(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)
	require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 50, 50)))

	err = store.Seed([]domain.BalanceSample{mustSample(time.Now(), "Squat", 45, 55)})

	require.Error(t, err)
}

func TestAll_SnapshotIsolation(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)
	require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 50, 50)))
	require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 45, 55)))

	snapshot := store.All()

	// appends after the snapshot are not observed by it
	require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 30, 70)))

	count := 0
	for range snapshot {
		count++
	}
	require.Equal(t, 2, count)
	require.Equal(t, 3, store.Len())
}

func TestAll_Restartable(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 40+int64(i), 60)))
	}

	snapshot := store.All()

	// partial consumption must not exhaust the sequence
	seen := 0
	for range snapshot {
		seen++
		if seen == 2 {
			break
		}
	}
	require.Equal(t, 2, seen)

	full := make([]domain.BalanceSample, 0, 4)
	for sample := range snapshot {
		full = append(full, sample)
	}
	require.Len(t, full, 4)
}

func TestAppend_CapacityExceeded(t *testing.T) {
	store, err := NewStore(2)
	require.NoError(t, err)

	require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 50, 50)))
	require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 45, 55)))

	err = store.Append(mustSample(time.Now(), "Squat", 30, 70))

	require.Error(t, err)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Equal(t, 2, store.Len())
}

func TestSeed_CapacityExceeded(t *testing.T) {
	store, err := NewStore(2)
	require.NoError(t, err)

	samples := []domain.BalanceSample{
		mustSample(time.Now(), "Squat", 50, 50),
		mustSample(time.Now(), "Squat", 45, 55),
		mustSample(time.Now(), "Squat", 30, 70),
	}

	err = store.Seed(samples)

	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Equal(t, 0, store.Len())
}

func TestNewStore_NegativeCapacity(t *testing.T) {
	_, err := NewStore(-1)
	require.Error(t, err)
}

func TestLast(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)

	_, ok := store.Last()
	require.False(t, ok)

	ts := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(mustSample(ts.Add(-time.Second), "Squat", 50, 50)))
	require.NoError(t, store.Append(mustSample(ts, "Squat", 45, 55)))

	last, ok := store.Last()
	require.True(t, ok)
	require.Equal(t, ts, last.Timestamp)
	require.True(t, decimal.NewFromInt(45).Equal(last.Left))
}

func TestConcurrentAppends_Serialized(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)

	const (
		writers          = 8
		appendsPerWriter = 50
	)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < appendsPerWriter; i++ {
				require.NoError(t, store.Append(mustSample(time.Now(), "Squat", 50, 50)))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, writers*appendsPerWriter, store.Len())
	require.Len(t, collect(store), writers*appendsPerWriter)
}

func collect(store *Store) []domain.BalanceSample {
	collected := make([]domain.BalanceSample, 0, store.Len())
	for sample := range store.All() {
		collected = append(collected, sample)
	}
	return collected
}

func mustSample(ts time.Time, exercise string, left, right int64) domain.BalanceSample {
	sample, err := domain.NewBalanceSample(ts, exercise, decimal.NewFromInt(left), decimal.NewFromInt(right))
	if err != nil {
		panic(err)
	}
	return sample
}
