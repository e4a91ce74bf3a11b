// Package feedback classifies balance samples into tiers and reports changes.
package feedback

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/libra/internal/domain"
	"go.uber.org/zap"
)

// Evaluator classifies side readings into feedback tiers. It tracks the last
// reported tier to keep logs quiet between changes, so it is meant to be owned
// by a single session loop.
type Evaluator struct {
	thresholds domain.FeedbackThresholds
	l          *zap.Logger

	lastTier domain.FeedbackTier
	hasLast  bool
}

// NewEvaluator creates an Evaluator with the given thresholds.
func NewEvaluator(l *zap.Logger, thresholds domain.FeedbackThresholds) (*Evaluator, error) {
	validated, err := domain.NewFeedbackThresholds(thresholds.Slight, thresholds.Significant)
	if err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	if l == nil {
		l = zap.NewNop()
	}

	return &Evaluator{
		thresholds: validated,
		l:          l,
	}, nil
}

// Evaluate classifies one pair of side readings into a feedback tier.
func (e *Evaluator) Evaluate(left, right decimal.Decimal) (domain.Feedback, error) {
	feedback, err := domain.AssessBalance(left, right, e.thresholds)
	if err != nil {
		return domain.Feedback{}, err
	}

	e.logTier(feedback)

	return feedback, nil
}

// EvaluateSample classifies the two sides of a stored sample.
func (e *Evaluator) EvaluateSample(sample domain.BalanceSample) (domain.Feedback, error) {
	return e.Evaluate(sample.Left, sample.Right)
}

// Thresholds returns the thresholds the evaluator classifies with.
func (e *Evaluator) Thresholds() domain.FeedbackThresholds {
	return e.thresholds
}

func (e *Evaluator) logTier(feedback domain.Feedback) {
	if e.hasLast && feedback.Tier == e.lastTier {
		e.l.Debug("balance tier unchanged",
			zap.String("tier", feedback.Tier.String()),
			zap.String("difference", feedback.Difference.String()))
		return
	}

	e.l.Info("balance tier changed",
		zap.String("tier", feedback.Tier.String()),
		zap.String("difference", feedback.Difference.String()),
		zap.String("message", feedback.Message))

	e.lastTier = feedback.Tier
	e.hasLast = true
}
