package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sentiment-event-alerts/internal/detector"
)

// sentimentColumns lists the header names accepted for the signal column, in
// preference order. Upstream exports have used all of these at some point.
var sentimentColumns = []string{"News.Sentiment", "News Sentiment", "sentiment", "News_Sentiment", "value"}

var dateLayouts = []string{"01/02/06", "2006-01-02", "01/02/2006"}

// CSVLoader reads a (date, sentiment) series from a local CSV file.
type CSVLoader struct {
	path   string
	logger zerolog.Logger
}

// NewCSV constructs a CSV series loader.
func NewCSV(path string, logger zerolog.Logger) *CSVLoader {
	return &CSVLoader{
		path:   path,
		logger: logger.With().Str("component", "csv_loader").Logger(),
	}
}

// LoadSeries parses the file and returns the series sorted ascending by date.
// Rows with an empty sentiment cell are skipped.
func (l *CSVLoader) LoadSeries(ctx context.Context) ([]detector.Point, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read series file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("series file %s has no data rows", l.path)
	}

	header := records[0]
	valueCol, err := findColumn(header, sentimentColumns)
	if err != nil {
		return nil, err
	}
	dateCol, err := findColumn(header, []string{"date", "date_clean"})
	if err != nil {
		return nil, err
	}

	points := make([]detector.Point, 0, len(records)-1)
	skipped := 0
	for line, record := range records[1:] {
		if dateCol >= len(record) || valueCol >= len(record) {
			return nil, fmt.Errorf("row %d has %d fields, expected at least %d", line+2, len(record), len(header))
		}

		raw := strings.TrimSpace(record[valueCol])
		if raw == "" {
			skipped++
			continue
		}

		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse sentiment %q: %w", line+2, raw, err)
		}

		date, err := parseDate(strings.TrimSpace(record[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}

		points = append(points, detector.Point{Date: date, Value: value})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	l.logger.Info().
		Str("path", l.path).
		Int("observations", len(points)).
		Int("skipped", skipped).
		Str("value_column", header[valueCol]).
		Msg("series loaded")

	return points, nil
}

func findColumn(header []string, candidates []string) (int, error) {
	for _, name := range candidates {
		for i, col := range header {
			if strings.TrimSpace(col) == name {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("none of the columns %v found in header %v", candidates, header)
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return normalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
