package sensor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/libra/internal/domain"
)

type fakeLink struct {
	mu    sync.Mutex
	calls int
	poll  func(call int, ctx context.Context) (RawReading, error)
}

func (f *fakeLink) Poll(ctx context.Context) (RawReading, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.poll(call, ctx)
}

func (f *fakeLink) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestDeviceSensor_ReadSample(t *testing.T) {
	link := &fakeLink{
		poll: func(int, context.Context) (RawReading, error) {
			return RawReading{Left: 48, Right: 52}, nil
		},
	}

	sensor, err := NewDeviceSensor(link, 0)
	require.NoError(t, err)

	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	sample, err := sensor.ReadSample(context.Background(), "Bench Press", at)

	require.NoError(t, err)
	require.Equal(t, "Bench Press", sample.Exercise)
	require.Equal(t, at, sample.Timestamp)
	require.True(t, decimal.NewFromInt(48).Equal(sample.Left))
	require.True(t, decimal.NewFromInt(52).Equal(sample.Right))
	require.Equal(t, 1, link.callCount())
}

func TestDeviceSensor_RetriesTransientFailures(t *testing.T) {
	link := &fakeLink{
		poll: func(call int, _ context.Context) (RawReading, error) {
			if call < 3 {
				return RawReading{}, errors.New("device busy")
			}
			return RawReading{Left: 45, Right: 55}, nil
		},
	}

	sensor, err := NewDeviceSensor(link, 0)
	require.NoError(t, err)

	sample, err := sensor.ReadSample(context.Background(), "Squat", time.Now())

	require.NoError(t, err)
	require.Equal(t, 3, link.callCount())
	require.True(t, decimal.NewFromInt(10).Equal(sample.Diff()))
}

func TestDeviceSensor_Unavailable(t *testing.T) {
	link := &fakeLink{
		poll: func(int, context.Context) (RawReading, error) {
			return RawReading{}, errors.New("device not responding")
		},
	}

	sensor, err := NewDeviceSensor(link, 0)
	require.NoError(t, err)

	_, err = sensor.ReadSample(context.Background(), "Squat", time.Now())

	require.Error(t, err)
	require.ErrorIs(t, err, ErrSensorUnavailable)
}

func TestDeviceSensor_TimeoutExpires(t *testing.T) {
	link := &fakeLink{
		poll: func(_ int, ctx context.Context) (RawReading, error) {
			<-ctx.Done()
			return RawReading{}, ctx.Err()
		},
	}

	sensor, err := NewDeviceSensor(link, 100*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	_, err = sensor.ReadSample(context.Background(), "Squat", time.Now())

	require.Error(t, err)
	require.ErrorIs(t, err, ErrSensorUnavailable)
	require.Less(t, time.Since(start), time.Second, "bounded wait should expire near the configured timeout")
}

func TestDeviceSensor_RejectsNonFiniteReading(t *testing.T) {
	link := &fakeLink{
		poll: func(int, context.Context) (RawReading, error) {
			return RawReading{Left: math.NaN(), Right: 50}, nil
		},
	}

	sensor, err := NewDeviceSensor(link, 0)
	require.NoError(t, err)

	_, err = sensor.ReadSample(context.Background(), "Squat", time.Now())

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidReading)
}

func TestNewDeviceSensor_NilLink(t *testing.T) {
	_, err := NewDeviceSensor(nil, 0)
	require.Error(t, err)
}
