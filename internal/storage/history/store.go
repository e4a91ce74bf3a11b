// Package history keeps the ordered balance sample sequence for a workout session.
package history

import (
	"fmt"
	"iter"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/libra/internal/domain"
)

// ErrCapacityExceeded reports an append to a store that reached its configured bound.
var ErrCapacityExceeded = errors.New("history capacity exceeded")

// Store is an in-memory, append-only sample sequence. Appends are serialized so
// insertion order is a total order and each append is atomic.
type Store struct {
	mu       sync.RWMutex
	samples  []domain.BalanceSample
	capacity int
}

// NewStore creates an empty store. A capacity of zero means unbounded.
func NewStore(capacity int) (*Store, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("capacity must be >= 0, got %d", capacity)
	}

	return &Store{
		samples:  make([]domain.BalanceSample, 0),
		capacity: capacity,
	}, nil
}

// Append adds a sample to the end of the history.
func (s *Store) Append(sample domain.BalanceSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && len(s.samples) >= s.capacity {
		return errors.Wrapf(ErrCapacityExceeded, "capacity %d reached", s.capacity)
	}

	s.samples = append(s.samples, sample)

	return nil
}

// Seed bulk-loads samples into an empty store, preserving their order.
func (s *Store) Seed(samples []domain.BalanceSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.samples) != 0 {
		return fmt.Errorf("store already holds %d samples, seed requires an empty store", len(s.samples))
	}
	if s.capacity > 0 && len(samples) > s.capacity {
		return errors.Wrapf(ErrCapacityExceeded, "seeding %d samples exceeds capacity %d", len(samples), s.capacity)
	}

	s.samples = append(s.samples, samples...)

	return nil
}

// All returns a lazy sequence over the samples in insertion order. The sequence
// iterates a snapshot taken at the call: it is restartable and does not observe
// later appends.
func (s *Store) All() iter.Seq[domain.BalanceSample] {
	s.mu.RLock()
	snapshot := s.samples[:len(s.samples):len(s.samples)]
	s.mu.RUnlock()

	return func(yield func(domain.BalanceSample) bool) {
		for _, sample := range snapshot {
			if !yield(sample) {
				return
			}
		}
	}
}

// Len returns the number of stored samples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.samples)
}

// Last returns the most recently appended sample, or false when the store is empty.
func (s *Store) Last() (domain.BalanceSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.samples) == 0 {
		return domain.BalanceSample{}, false
	}

	return s.samples[len(s.samples)-1], true
}
