package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeriesRow is one persisted observation of the labeled sentiment series.
// Score is nil for dates that carry no selected event.
type SeriesRow struct {
	Date      time.Time
	Value     decimal.Decimal
	Smoothed  decimal.Decimal
	LocalMin  bool
	LocalMax  bool
	Score     *decimal.Decimal
	UpdatedAt time.Time
}

// EventRecord captures a selected sentiment reversal event for display and
// alert de-duplication.
type EventRecord struct {
	ID        int64
	Date      time.Time
	Type      string
	Score     decimal.Decimal
	Channels  []string
	CreatedAt time.Time
}
