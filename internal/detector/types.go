package detector

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType distinguishes trough events from peak events.
type EventType string

const (
	// Minimum marks a local trough in the sentiment series.
	Minimum EventType = "min"
	// Maximum marks a local peak in the sentiment series.
	Maximum EventType = "max"
)

// Point is one daily observation of the sentiment signal.
type Point struct {
	Date  time.Time
	Value decimal.Decimal
}

// Candidate is a located extremum with its reversal score.
// Candidates are immutable once produced by the scorer.
type Candidate struct {
	Index int
	Date  time.Time
	Type  EventType
	Score decimal.Decimal
}

// Event is a selected sentiment reversal event.
type Event struct {
	Date  time.Time
	Type  EventType
	Score decimal.Decimal
}

// Row is one output record, aligned by date with the input series.
// Score is nil for dates that carry no event.
type Row struct {
	Date     time.Time
	Value    decimal.Decimal
	Smoothed decimal.Decimal
	LocalMin bool
	LocalMax bool
	Score    *decimal.Decimal
}

// Summary reports diagnostic counts for one pipeline run.
type Summary struct {
	Observations     int
	MinCandidates    int
	MaxCandidates    int
	TopKSurvivors    int
	RemovedBySpacing int
	SelectedMinima   int
	SelectedMaxima   int
	InsufficientData bool
}

// Events extracts the selected events from a labeled result in date order.
func Events(rows []Row) []Event {
	events := make([]Event, 0)
	for _, row := range rows {
		if !row.LocalMin && !row.LocalMax {
			continue
		}
		typ := Minimum
		if row.LocalMax {
			typ = Maximum
		}
		score := decimal.Zero
		if row.Score != nil {
			score = *row.Score
		}
		events = append(events, Event{Date: row.Date, Type: typ, Score: score})
	}
	return events
}
