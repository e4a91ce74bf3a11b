package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	defaultSlightThresholdPercent      = 10
	defaultSignificantThresholdPercent = 20
)

// FeedbackTier classifies how imbalanced a sample is, ordered by severity.
type FeedbackTier int

const (
	TierBalanced FeedbackTier = iota
	TierSlightImbalance
	TierSignificantImbalance
)

// tier string constants to avoid magic strings
const (
	tierStringBalanced             = "balanced"
	tierStringSlightImbalance      = "slight_imbalance"
	tierStringSignificantImbalance = "significant_imbalance"
)

// String returns the string representation of the tier.
func (t FeedbackTier) String() string {
	switch t {
	case TierBalanced:
		return tierStringBalanced
	case TierSlightImbalance:
		return tierStringSlightImbalance
	case TierSignificantImbalance:
		return tierStringSignificantImbalance
	default:
		return "unknown"
	}
}

// Display messages shown to the user for each tier.
const (
	MessageBalanced             = "Great balance! Keep it up!"
	MessageSlightImbalance      = "Slight imbalance detected. Try to maintain even force."
	MessageSignificantImbalance = "Significant imbalance detected. Please adjust your form."
)

// Feedback is the result of classifying one pair of side readings.
type Feedback struct {
	Tier       FeedbackTier
	Message    string
	Difference decimal.Decimal
}

// FeedbackThresholds encapsulates balance classification thresholds.
type FeedbackThresholds struct {
	Slight      decimal.Decimal
	Significant decimal.Decimal
}

// NewFeedbackThresholds creates validated classification thresholds.
func NewFeedbackThresholds(slight, significant decimal.Decimal) (FeedbackThresholds, error) {
	if slight.LessThanOrEqual(decimal.Zero) {
		return FeedbackThresholds{}, fmt.Errorf("slight threshold must be positive, got %s", slight.String())
	}
	if significant.LessThanOrEqual(decimal.Zero) {
		return FeedbackThresholds{}, fmt.Errorf("significant threshold must be positive, got %s", significant.String())
	}
	if !slight.LessThan(significant) {
		return FeedbackThresholds{}, fmt.Errorf("slight threshold must be less than significant, got %s >= %s",
			slight.String(), significant.String())
	}

	return FeedbackThresholds{
		Slight:      slight,
		Significant: significant,
	}, nil
}

// DefaultFeedbackThresholds returns the standard thresholds of 10 and 20 percent.
func DefaultFeedbackThresholds() FeedbackThresholds {
	return FeedbackThresholds{
		Slight:      decimal.NewFromInt(defaultSlightThresholdPercent),
		Significant: decimal.NewFromInt(defaultSignificantThresholdPercent),
	}
}

// AssessBalance classifies a pair of side readings into a feedback tier.
// A difference equal to a threshold falls into the higher tier.
func AssessBalance(left, right decimal.Decimal, thresholds FeedbackThresholds) (Feedback, error) {
	if err := validateReading("left", left); err != nil {
		return Feedback{}, err
	}
	if err := validateReading("right", right); err != nil {
		return Feedback{}, err
	}

	diff := left.Sub(right).Abs()

	switch {
	case diff.LessThan(thresholds.Slight):
		return Feedback{Tier: TierBalanced, Message: MessageBalanced, Difference: diff}, nil
	case diff.LessThan(thresholds.Significant):
		return Feedback{Tier: TierSlightImbalance, Message: MessageSlightImbalance, Difference: diff}, nil
	default:
		return Feedback{Tier: TierSignificantImbalance, Message: MessageSignificantImbalance, Difference: diff}, nil
	}
}
