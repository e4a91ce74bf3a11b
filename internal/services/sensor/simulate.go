package sensor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/libra/internal/domain"
)

const (
	defaultSimMinPercent = 40
	defaultSimMaxPercent = 60
)

// SimulatedSensor draws both side readings independently from a uniform range,
// standing in for a real force sensor feed.
type SimulatedSensor struct {
	mu  sync.Mutex
	rnd *rand.Rand
	min float64
	max float64
}

// NewSimulatedSensor creates a simulated sensor over [min, max] percent.
// Zero bounds select the default [40, 60] range; a zero seed derives one
// from the current time.
func NewSimulatedSensor(min, max decimal.Decimal, seed int64) (*SimulatedSensor, error) {
	if min.IsZero() && max.IsZero() {
		min = decimal.NewFromInt(defaultSimMinPercent)
		max = decimal.NewFromInt(defaultSimMaxPercent)
	}

	if min.LessThan(decimal.Zero) || max.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("simulation range must stay within [0, 100], got [%s, %s]", min.String(), max.String())
	}
	if !min.LessThan(max) {
		return nil, fmt.Errorf("simulation range min must be less than max, got [%s, %s]", min.String(), max.String())
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &SimulatedSensor{
		rnd: rand.New(rand.NewSource(seed)),
		min: min.InexactFloat64(),
		max: max.InexactFloat64(),
	}, nil
}

// ReadSample draws one uniform reading per side. The simulated sensor cannot fail
// to produce a reading.
func (s *SimulatedSensor) ReadSample(_ context.Context, exercise string, at time.Time) (domain.BalanceSample, error) {
	// rand.Rand is not safe for concurrent use
	s.mu.Lock()
	left := s.min + s.rnd.Float64()*(s.max-s.min)
	right := s.min + s.rnd.Float64()*(s.max-s.min)
	s.mu.Unlock()

	return domain.NewBalanceSampleFromReadings(at, exercise, left, right)
}
