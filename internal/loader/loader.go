package loader

import (
	"context"
	"time"

	"sentiment-event-alerts/internal/detector"
)

// SeriesLoader retrieves the daily sentiment series from some source.
type SeriesLoader interface {
	LoadSeries(ctx context.Context) ([]detector.Point, error)
}

// normalizeDate strips any time-of-day component so that day arithmetic
// downstream stays exact.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
