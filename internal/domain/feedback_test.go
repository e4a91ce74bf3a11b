package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAssessBalance_Balanced(t *testing.T) {
	feedback, err := AssessBalance(decimal.NewFromInt(50), decimal.NewFromInt(50), DefaultFeedbackThresholds())

	require.NoError(t, err)
	require.Equal(t, TierBalanced, feedback.Tier)
	require.Equal(t, "Great balance! Keep it up!", feedback.Message)
	require.True(t, feedback.Difference.IsZero())
}

func TestAssessBalance_SlightImbalance(t *testing.T) {
	// difference of exactly 10 falls into the slight tier
	feedback, err := AssessBalance(decimal.NewFromInt(45), decimal.NewFromInt(55), DefaultFeedbackThresholds())

	require.NoError(t, err)
	require.Equal(t, TierSlightImbalance, feedback.Tier)
	require.Equal(t, "Slight imbalance detected. Try to maintain even force.", feedback.Message)
	require.True(t, decimal.NewFromInt(10).Equal(feedback.Difference))
}

func TestAssessBalance_SignificantImbalance(t *testing.T) {
	feedback, err := AssessBalance(decimal.NewFromInt(30), decimal.NewFromInt(70), DefaultFeedbackThresholds())

	require.NoError(t, err)
	require.Equal(t, TierSignificantImbalance, feedback.Tier)
	require.Equal(t, "Significant imbalance detected. Please adjust your form.", feedback.Message)
	require.True(t, decimal.NewFromInt(40).Equal(feedback.Difference))
}

func TestAssessBalance_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		left     string
		right    string
		expected FeedbackTier
	}{
		{name: "just_below_slight", left: "50", right: "59.99", expected: TierBalanced},
		{name: "exactly_slight", left: "50", right: "60", expected: TierSlightImbalance},
		{name: "just_below_significant", left: "40.01", right: "60", expected: TierSlightImbalance},
		{name: "exactly_significant", left: "40", right: "60", expected: TierSignificantImbalance},
		{name: "far_above_significant", left: "10", right: "90", expected: TierSignificantImbalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, err := decimal.NewFromString(tt.left)
			require.NoError(t, err)
			right, err := decimal.NewFromString(tt.right)
			require.NoError(t, err)

			feedback, err := AssessBalance(left, right, DefaultFeedbackThresholds())

			require.NoError(t, err)
			require.Equal(t, tt.expected, feedback.Tier)
		})
	}
}

func TestAssessBalance_Symmetric(t *testing.T) {
	pairs := [][2]int64{
		{50, 50},
		{45, 55},
		{30, 70},
		{0, 100},
		{60, 48},
	}

	for _, pair := range pairs {
		a := decimal.NewFromInt(pair[0])
		b := decimal.NewFromInt(pair[1])

		forward, err := AssessBalance(a, b, DefaultFeedbackThresholds())
		require.NoError(t, err)
		backward, err := AssessBalance(b, a, DefaultFeedbackThresholds())
		require.NoError(t, err)

		require.Equal(t, forward.Tier, backward.Tier)
		require.Equal(t, forward.Message, backward.Message)
		require.True(t, forward.Difference.Equal(backward.Difference))
	}
}

func TestAssessBalance_OutOfDomain(t *testing.T) {
	_, err := AssessBalance(decimal.NewFromInt(-5), decimal.NewFromInt(50), DefaultFeedbackThresholds())

	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidReading)

	_, err = AssessBalance(decimal.NewFromInt(50), decimal.NewFromInt(120), DefaultFeedbackThresholds())

	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidReading)
}

func TestAssessBalance_CustomThresholds(t *testing.T) {
	thresholds, err := NewFeedbackThresholds(decimal.NewFromInt(5), decimal.NewFromInt(15))
	require.NoError(t, err)

	feedback, err := AssessBalance(decimal.NewFromInt(50), decimal.NewFromInt(57), thresholds)

	require.NoError(t, err)
	require.Equal(t, TierSlightImbalance, feedback.Tier)
}

func TestNewFeedbackThresholds_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		slight      decimal.Decimal
		significant decimal.Decimal
	}{
		{
			name:        "zero_slight",
			slight:      decimal.Zero,
			significant: decimal.NewFromInt(20),
		},
		{
			name:        "negative_significant",
			slight:      decimal.NewFromInt(10),
			significant: decimal.NewFromInt(-20),
		},
		{
			name:        "slight_equals_significant",
			slight:      decimal.NewFromInt(10),
			significant: decimal.NewFromInt(10),
		},
		{
			name:        "slight_above_significant",
			slight:      decimal.NewFromInt(20),
			significant: decimal.NewFromInt(10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeedbackThresholds(tt.slight, tt.significant)
			require.Error(t, err)
		})
	}
}

func TestDefaultFeedbackThresholds(t *testing.T) {
	thresholds := DefaultFeedbackThresholds()

	require.True(t, decimal.NewFromInt(10).Equal(thresholds.Slight))
	require.True(t, decimal.NewFromInt(20).Equal(thresholds.Significant))
}

func TestFeedbackTier_String(t *testing.T) {
	require.Equal(t, "balanced", TierBalanced.String())
	require.Equal(t, "slight_imbalance", TierSlightImbalance.String())
	require.Equal(t, "significant_imbalance", TierSignificantImbalance.String())
	require.Equal(t, "unknown", FeedbackTier(42).String())
}

func TestFeedbackTier_SeverityOrdering(t *testing.T) {
	require.True(t, TierBalanced < TierSlightImbalance)
	require.True(t, TierSlightImbalance < TierSignificantImbalance)
}
