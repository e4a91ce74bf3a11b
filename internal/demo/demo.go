// Package demo generates synthetic balance history for pre-seeded sessions.
package demo

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/vadiminshakov/libra/internal/domain"
)

const (
	demoMinPercent = 40
	demoMaxPercent = 60
)

// HistorySamples returns one synthetic sample per day for the given number of
// days, in chronological order ending at now. A nil faker gets a random seed.
func HistorySamples(now time.Time, days int, exercise string, faker *gofakeit.Faker) ([]domain.BalanceSample, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be >= 1, got %d", days)
	}
	if faker == nil {
		faker = gofakeit.New(0)
	}

	samples := make([]domain.BalanceSample, 0, days)
	for i := days - 1; i >= 0; i-- {
		ts := now.AddDate(0, 0, -i)

		left := faker.Float64Range(demoMinPercent, demoMaxPercent)
		right := faker.Float64Range(demoMinPercent, demoMaxPercent)

		sample, err := domain.NewBalanceSampleFromReadings(ts, exercise, left, right)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, nil
}
