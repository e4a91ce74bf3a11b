// Package domain defines core data structures used throughout the balance tracker.
package domain

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidReading reports a side reading that is non-finite or outside the
// supported percentage domain.
var ErrInvalidReading = errors.New("invalid balance reading")

const (
	minReadingPercent = 0
	maxReadingPercent = 100
)

var (
	minReading = decimal.NewFromInt(minReadingPercent)
	maxReading = decimal.NewFromInt(maxReadingPercent)
)

// BalanceSample is one timestamped pair of left/right force readings for an exercise.
type BalanceSample struct {
	Timestamp time.Time       `json:"timestamp"`
	Exercise  string          `json:"exercise"`
	Left      decimal.Decimal `json:"left"`
	Right     decimal.Decimal `json:"right"`
}

// NewBalanceSample creates a validated BalanceSample.
func NewBalanceSample(timestamp time.Time, exercise string, left, right decimal.Decimal) (BalanceSample, error) {
	if err := validateReading("left", left); err != nil {
		return BalanceSample{}, err
	}
	if err := validateReading("right", right); err != nil {
		return BalanceSample{}, err
	}

	return BalanceSample{
		Timestamp: timestamp,
		Exercise:  exercise,
		Left:      left,
		Right:     right,
	}, nil
}

// NewBalanceSampleFromReadings creates a validated BalanceSample from raw float64 readings.
func NewBalanceSampleFromReadings(timestamp time.Time, exercise string, left, right float64) (BalanceSample, error) {
	// decimal.NewFromFloat panics on NaN and Inf
	if !isFinite(left) {
		return BalanceSample{}, errors.Wrapf(ErrInvalidReading, "left reading is not finite: %v", left)
	}
	if !isFinite(right) {
		return BalanceSample{}, errors.Wrapf(ErrInvalidReading, "right reading is not finite: %v", right)
	}

	return NewBalanceSample(timestamp, exercise, decimal.NewFromFloat(left), decimal.NewFromFloat(right))
}

// Diff returns the absolute difference between the two side readings.
func (s BalanceSample) Diff() decimal.Decimal {
	return s.Left.Sub(s.Right).Abs()
}

// validateReading checks that a side reading is a valid percentage.
func validateReading(side string, value decimal.Decimal) error {
	if value.LessThan(minReading) || value.GreaterThan(maxReading) {
		return errors.Wrapf(ErrInvalidReading, "%s reading must be within [%s, %s], got %s",
			side, minReading.String(), maxReading.String(), value.String())
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
