package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/libra/config"
	"github.com/vadiminshakov/libra/internal/demo"
	"github.com/vadiminshakov/libra/internal/domain"
	"github.com/vadiminshakov/libra/internal/events"
	"github.com/vadiminshakov/libra/internal/services/feedback"
	"github.com/vadiminshakov/libra/internal/services/sensor"
	"github.com/vadiminshakov/libra/internal/storage/history"
	"go.uber.org/zap"
)

const demoHistoryDays = 7

type sampler interface {
	ReadSample(ctx context.Context, exercise string, at time.Time) (domain.BalanceSample, error)
}

type evaluator interface {
	EvaluateSample(sample domain.BalanceSample) (domain.Feedback, error)
}

// WorkoutSession represents a single exercise feedback instance. It owns the
// sensor, the evaluator, the history of the exercise and the event feed that
// UI layers subscribe to.
type WorkoutSession struct {
	ID       string
	Exercise string

	conf        config.Config
	sensor      sampler
	evaluator   evaluator
	thresholds  domain.FeedbackThresholds
	history     *history.Store
	broadcaster *events.FeedbackBroadcaster
	l           *zap.Logger
}

// NewWorkoutSession creates a new workout session instance. The link is only
// used when the config selects the device sensor and may be nil otherwise.
func NewWorkoutSession(conf config.Config, logger *zap.Logger, link sensor.DeviceLink) (*WorkoutSession, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("exercise", conf.Exercise))

	src, err := newSensor(conf, link)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create balance sensor")
	}

	thresholds, err := domain.NewFeedbackThresholds(conf.SlightThreshold, conf.SignificantThreshold)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create feedback thresholds")
	}

	eval, err := feedback.NewEvaluator(logger, thresholds)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create evaluator")
	}

	store, err := history.NewStore(conf.HistoryCapacity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create history store")
	}

	if conf.DemoHistory {
		samples, err := demo.HistorySamples(time.Now(), demoHistoryDays, conf.Exercise, gofakeit.New(conf.SensorSeed))
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate demo history")
		}
		if err := store.Seed(samples); err != nil {
			return nil, errors.Wrap(err, "failed to seed history store")
		}
	}

	return &WorkoutSession{
		ID:          uuid.New().String(),
		Exercise:    conf.Exercise,
		conf:        conf,
		sensor:      src,
		evaluator:   eval,
		thresholds:  thresholds,
		history:     store,
		broadcaster: events.NewFeedbackBroadcaster(256),
		l:           logger,
	}, nil
}

func newSensor(conf config.Config, link sensor.DeviceLink) (sampler, error) {
	switch conf.Sensor {
	case config.SensorSimulate:
		return sensor.NewSimulatedSensor(conf.SimMin, conf.SimMax, conf.SensorSeed)
	case config.SensorDevice:
		return sensor.NewDeviceSensor(link, conf.ReadTimeout)
	default:
		return nil, fmt.Errorf("unsupported sensor source: %s", conf.Sensor)
	}
}

// Run executes the feedback loop until the context is cancelled, the optional
// session duration elapses or the history store reaches capacity.
func (s *WorkoutSession) Run(ctx context.Context) error {
	var done <-chan time.Time
	if s.conf.Duration > 0 {
		timer := time.NewTimer(s.conf.Duration)
		defer timer.Stop()
		done = timer.C
	}

	ticker := time.NewTicker(s.conf.TickInterval)
	defer ticker.Stop()

	s.l.Info("Starting workout session",
		zap.String("session_id", s.ID),
		zap.Duration("tick_interval", s.conf.TickInterval))

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Context done, stopping workout session", zap.String("session_id", s.ID))
			return ctx.Err()
		case <-done:
			s.l.Info("Session duration elapsed", zap.String("session_id", s.ID))
			return nil
		case tick := <-ticker.C:
			sample, err := s.sensor.ReadSample(ctx, s.Exercise, tick)
			if err != nil {
				if errors.Is(err, sensor.ErrSensorUnavailable) {
					s.l.Warn("Sensor unavailable, skipping tick", zap.Error(err))
				} else {
					s.l.Error("Failed to read balance sample", zap.Error(err))
				}
				continue
			}

			fb, err := s.evaluator.EvaluateSample(sample)
			if err != nil {
				s.l.Warn("Dropping invalid sample", zap.Error(err))
				continue
			}

			if err := s.history.Append(sample); err != nil {
				if errors.Is(err, history.ErrCapacityExceeded) {
					s.l.Warn("History capacity reached, stopping session", zap.String("session_id", s.ID))
					return nil
				}
				return errors.Wrap(err, "failed to append sample to history")
			}

			s.broadcaster.Publish(events.NewFeedbackEvent(sample, fb))
		}
	}
}

// History returns the session's append-only sample history.
func (s *WorkoutSession) History() *history.Store {
	return s.history
}

// Feed returns the broadcaster that session feedback events are published to.
func (s *WorkoutSession) Feed() *events.FeedbackBroadcaster {
	return s.broadcaster
}

// Thresholds returns the thresholds the session classifies with.
func (s *WorkoutSession) Thresholds() domain.FeedbackThresholds {
	return s.thresholds
}
