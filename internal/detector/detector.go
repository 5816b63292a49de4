// Package detector implements the sentiment reversal event pipeline: smooth
// the daily signal, locate strict local extrema, score each extremum by the
// reversal that follows it, keep the top K per year and type, then enforce a
// minimum day separation across everything selected.
package detector

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Detector runs the event identification pipeline. A Detector is stateless
// between runs; the same instance is safe for concurrent use on different
// series.
type Detector struct {
	cfg    Config
	logger zerolog.Logger
}

// New validates the configuration eagerly and constructs a Detector.
func New(cfg Config, logger zerolog.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		cfg:    cfg,
		logger: logger.With().Str("component", "detector").Logger(),
	}, nil
}

// Run executes the full pipeline over a series sorted strictly ascending by
// date. The result carries one row per input date, in input order; dates are
// never added or removed. A series too short for even one extrema window is
// not an error, it simply selects nothing.
func (d *Detector) Run(series []Point) ([]Row, Summary, error) {
	for i := 1; i < len(series); i++ {
		if !series[i-1].Date.Before(series[i].Date) {
			return nil, Summary{}, fmt.Errorf("series must be sorted strictly ascending by date: %s followed by %s",
				series[i-1].Date.Format("2006-01-02"), series[i].Date.Format("2006-01-02"))
		}
	}

	summary := Summary{Observations: len(series)}

	smoothed := smooth(series, d.cfg.SmoothingWindow)

	minIdx, maxIdx := locateExtrema(smoothed, d.cfg.ExtremaHalfWindow)
	if len(series) > 0 && len(series) < 2*d.cfg.ExtremaHalfWindow+1 {
		summary.InsufficientData = true
		d.logger.Warn().
			Int("observations", len(series)).
			Int("required", 2*d.cfg.ExtremaHalfWindow+1).
			Msg("series shorter than one extrema window; no candidates")
	}

	minCands := scoreCandidates(series, smoothed, minIdx, Minimum, d.cfg.LookaheadDays)
	maxCands := scoreCandidates(series, smoothed, maxIdx, Maximum, d.cfg.LookaheadDays)
	summary.MinCandidates = len(minCands)
	summary.MaxCandidates = len(maxCands)

	selected := append(topKPerYear(minCands, d.cfg.TopKPerYear), topKPerYear(maxCands, d.cfg.TopKPerYear)...)
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Date.Before(selected[j].Date) })
	summary.TopKSurvivors = len(selected)

	kept, removed := enforceSeparation(selected, d.cfg.MinSeparationDays)
	summary.RemovedBySpacing = removed

	rows := label(series, smoothed, kept)
	for _, row := range rows {
		if row.LocalMin {
			summary.SelectedMinima++
		}
		if row.LocalMax {
			summary.SelectedMaxima++
		}
	}

	d.logger.Info().
		Int("observations", summary.Observations).
		Int("min_candidates", summary.MinCandidates).
		Int("max_candidates", summary.MaxCandidates).
		Int("top_k_survivors", summary.TopKSurvivors).
		Int("removed_by_spacing", summary.RemovedBySpacing).
		Int("selected_minima", summary.SelectedMinima).
		Int("selected_maxima", summary.SelectedMaxima).
		Msg("detection complete")

	return rows, summary, nil
}

// label builds the output table: every input date exactly once, indicator
// columns set only on selected events. If a degenerate configuration selects
// both a minimum and a maximum on the same date, the higher score wins and a
// tie falls to the minimum, so no date is ever double-labeled.
func label(series []Point, smoothed []decimal.Decimal, events []Candidate) []Row {
	byIndex := make(map[int]Candidate, len(events))
	for _, e := range events {
		prev, ok := byIndex[e.Index]
		if !ok || e.Score.GreaterThan(prev.Score) || (e.Score.Equal(prev.Score) && e.Type == Minimum) {
			byIndex[e.Index] = e
		}
	}

	rows := make([]Row, len(series))
	for i, p := range series {
		row := Row{Date: p.Date, Value: p.Value, Smoothed: smoothed[i]}
		if e, ok := byIndex[i]; ok {
			score := e.Score
			row.Score = &score
			if e.Type == Minimum {
				row.LocalMin = true
			} else {
				row.LocalMax = true
			}
		}
		rows[i] = row
	}
	return rows
}
