package events

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/libra/internal/domain"
)

func TestNewFeedbackEvent(t *testing.T) {
	ts := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	sample, err := domain.NewBalanceSample(ts, "Bench Press", decimal.NewFromInt(45), decimal.NewFromInt(55))
	require.NoError(t, err)

	feedback, err := domain.AssessBalance(sample.Left, sample.Right, domain.DefaultFeedbackThresholds())
	require.NoError(t, err)

	event := NewFeedbackEvent(sample, feedback)

	require.Equal(t, ts, event.Timestamp)
	require.Equal(t, "Bench Press", event.Exercise)
	require.Equal(t, "45", event.Left)
	require.Equal(t, "55", event.Right)
	require.Equal(t, "slight_imbalance", event.Tier)
	require.Equal(t, "Slight imbalance detected. Try to maintain even force.", event.Message)
	require.Equal(t, "10", event.Difference)
}

func TestFeedbackBroadcaster_PublishToAllSubscribers(t *testing.T) {
	b := NewFeedbackBroadcaster(4)

	first := b.Subscribe()
	second := b.Subscribe()
	defer b.Unsubscribe(first)
	defer b.Unsubscribe(second)

	event := FeedbackEvent{Exercise: "Squat", Tier: "balanced"}
	b.Publish(event)

	require.Equal(t, event, <-first)
	require.Equal(t, event, <-second)
}

func TestFeedbackBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewFeedbackBroadcaster(4)

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	_, open := <-ch
	require.False(t, open)

	// double unsubscribe must not panic
	b.Unsubscribe(ch)
}

func TestFeedbackBroadcaster_DropsSlowConsumer(t *testing.T) {
	b := NewFeedbackBroadcaster(1)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(FeedbackEvent{Tier: "balanced"})
	b.Publish(FeedbackEvent{Tier: "slight_imbalance"}) // buffer full, dropped

	require.Equal(t, "balanced", (<-ch).Tier)

	select {
	case e := <-ch:
		t.Fatalf("expected dropped event, got %v", e)
	default:
	}
}

func TestNewFeedbackBroadcaster_MinimumBuffer(t *testing.T) {
	b := NewFeedbackBroadcaster(0)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// publish must not block even though requested buffer was zero
	b.Publish(FeedbackEvent{Tier: "balanced"})
	require.Equal(t, "balanced", (<-ch).Tier)
}
