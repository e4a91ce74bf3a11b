package sensor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/libra/internal/domain"
	"github.com/vadiminshakov/libra/pkg/retry"
)

const defaultReadTimeout = 2 * time.Second

// RawReading is one pair of side readings as reported by a device.
type RawReading struct {
	Left  float64
	Right float64
}

// DeviceLink is the transport to a physical balance sensor.
type DeviceLink interface {
	Poll(ctx context.Context) (RawReading, error)
}

// DeviceSensor reads samples from a physical device, retrying transient poll
// failures within a bounded wait.
type DeviceSensor struct {
	link    DeviceLink
	retrier *retry.Retrier
	timeout time.Duration
}

// NewDeviceSensor creates a sensor backed by the given device link. A non-positive
// timeout selects the default bounded wait.
func NewDeviceSensor(link DeviceLink, timeout time.Duration) (*DeviceSensor, error) {
	if link == nil {
		return nil, errors.New("device link is required")
	}
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}

	return &DeviceSensor{
		link:    link,
		retrier: retry.New(),
		timeout: timeout,
	}, nil
}

// ReadSample polls the device until a reading arrives or the bounded wait expires.
func (d *DeviceSensor) ReadSample(ctx context.Context, exercise string, at time.Time) (domain.BalanceSample, error) {
	readCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	reading, err := retry.DoWithData(d.retrier, readCtx, func(ctx context.Context) (RawReading, error) {
		return d.link.Poll(ctx)
	})
	if err != nil {
		return domain.BalanceSample{}, errors.Wrapf(ErrSensorUnavailable, "no reading within %s: %v", d.timeout, err)
	}

	return domain.NewBalanceSampleFromReadings(at, exercise, reading.Left, reading.Right)
}
