package events

import (
	"sync"
	"time"

	"github.com/vadiminshakov/libra/internal/domain"
)

// FeedbackEvent is a domain event representing one evaluated balance sample.
// Uses string fields to avoid float precision issues when consumed by web/UI layers.
type FeedbackEvent struct {
	Timestamp  time.Time `json:"ts"`
	Exercise   string    `json:"exercise"`
	Left       string    `json:"left"`
	Right      string    `json:"right"`
	Tier       string    `json:"tier"`
	Message    string    `json:"message"`
	Difference string    `json:"difference"`
}

// NewFeedbackEvent builds an event from a sample and its classification.
func NewFeedbackEvent(sample domain.BalanceSample, feedback domain.Feedback) FeedbackEvent {
	return FeedbackEvent{
		Timestamp:  sample.Timestamp,
		Exercise:   sample.Exercise,
		Left:       sample.Left.String(),
		Right:      sample.Right.String(),
		Tier:       feedback.Tier.String(),
		Message:    feedback.Message,
		Difference: feedback.Difference.String(),
	}
}

// FeedbackBroadcaster fans out events to all subscribers via buffered channels.
// It keeps the API intentionally small so call sites can stay straightforward.
type FeedbackBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan FeedbackEvent]struct{}
	buffer int
}

// NewFeedbackBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewFeedbackBroadcaster(buffer int) *FeedbackBroadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &FeedbackBroadcaster{
		subs:   make(map[chan FeedbackEvent]struct{}),
		buffer: buffer,
	}
}

// Publish sends the event to all subscribers, dropping if a reader is slow.
func (b *FeedbackBroadcaster) Publish(e FeedbackEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives events until Unsubscribe is called.
func (b *FeedbackBroadcaster) Subscribe() chan FeedbackEvent {
	ch := make(chan FeedbackEvent, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *FeedbackBroadcaster) Unsubscribe(ch chan FeedbackEvent) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
