package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"sentiment-event-alerts/internal/detector"
	"sentiment-event-alerts/internal/loader"
	"sentiment-event-alerts/internal/storage"
)

// Detect runs the full pipeline once over a CSV series and writes the
// labeled output.
func (a *App) Detect(ctx context.Context, opts DetectOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" && !opts.Persist {
		return errors.New("at least one of --output, --png, or --persist must be provided")
	}

	var src loader.SeriesLoader
	if opts.Input != "" {
		src = loader.NewCSV(opts.Input, a.Logger)
	} else {
		src = a.newLoader()
	}

	det, err := a.newDetector(opts.Detector)
	if err != nil {
		return err
	}

	series, err := src.LoadSeries(ctx)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		a.Logger.Warn().Msg("series is empty; nothing to detect")
		return nil
	}

	rows, summary, err := det.Run(series)
	if err != nil {
		return err
	}

	if opts.CSVPath != "" {
		if err := writeLabeledCSV(opts.CSVPath, rows); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.CSVPath).Msg("labeled series written")
	}

	if opts.PNGPath != "" {
		if err := writeSeriesPNG(opts.PNGPath, rows); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.PNGPath).Msg("chart written")
	}

	if opts.Persist {
		if err := a.persistRows(ctx, rows); err != nil {
			return err
		}
	}

	a.Logger.Info().
		Int("observations", summary.Observations).
		Int("min_candidates", summary.MinCandidates).
		Int("max_candidates", summary.MaxCandidates).
		Int("removed_by_spacing", summary.RemovedBySpacing).
		Int("selected_minima", summary.SelectedMinima).
		Int("selected_maxima", summary.SelectedMaxima).
		Msg("detection finished")

	return nil
}

func (a *App) persistRows(ctx context.Context, rows []detector.Row) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot persist")
	}
	if closeStore != nil {
		defer closeStore()
	}

	for _, row := range rows {
		record := storage.SeriesRow{
			Date:     row.Date,
			Value:    row.Value,
			Smoothed: row.Smoothed,
			LocalMin: row.LocalMin,
			LocalMax: row.LocalMax,
			Score:    row.Score,
		}
		if err := store.UpsertSeriesRow(ctx, record); err != nil {
			return fmt.Errorf("persist row %s: %w", row.Date.Format("2006-01-02"), err)
		}
	}

	for _, event := range detector.Events(rows) {
		record := storage.EventRecord{
			Date:     event.Date,
			Type:     string(event.Type),
			Score:    event.Score,
			Channels: a.Config.Alerting.Channels,
		}
		if _, err := store.UpsertEvent(ctx, record); err != nil {
			return fmt.Errorf("persist event %s: %w", event.Date.Format("2006-01-02"), err)
		}
	}

	return nil
}

func writeLabeledCSV(path string, rows []detector.Row) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "sentiment", "sentiment_smoothed", "local_min", "local_max", "extremity_score"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		score := ""
		if row.Score != nil {
			score = row.Score.String()
		}
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Value.String(),
			row.Smoothed.String(),
			indicator(row.LocalMin),
			indicator(row.LocalMax),
			score,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func indicator(set bool) string {
	if set {
		return "1"
	}
	return "0"
}
