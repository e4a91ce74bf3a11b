// Package sensor produces balance samples from simulated or device-backed sources.
package sensor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/libra/internal/domain"
)

// ErrSensorUnavailable reports that no reading could be produced within the allowed time.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// Sensor produces one balance sample per invocation. Implementations are
// stateless with respect to history; callers own appending.
type Sensor interface {
	ReadSample(ctx context.Context, exercise string, at time.Time) (domain.BalanceSample, error)
}
