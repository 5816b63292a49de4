package app

import (
	"context"
	"errors"

	"sentiment-event-alerts/internal/loader"
	"sentiment-event-alerts/internal/storage"
)

// Import bulk-loads a CSV series into the database without running
// detection. Labels are cleared for any date the import touches; a later
// detect or watch pass re-computes them.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	if opts.Input == "" {
		return errors.New("--input must be provided")
	}

	series, err := loader.NewCSV(opts.Input, a.Logger).LoadSeries(ctx)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return errors.New("series file contains no observations")
	}

	if opts.DryRun {
		a.Logger.Warn().Int("observations", len(series)).Msg("import dry-run: nothing written")
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; cannot import")
	}
	if closeStore != nil {
		defer closeStore()
	}

	imported := 0
	for _, point := range series {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row := storage.SeriesRow{
			Date:     point.Date,
			Value:    point.Value,
			Smoothed: point.Value,
		}
		if err := store.UpsertSeriesRow(ctx, row); err != nil {
			a.Logger.Error().Err(err).Time("obs_date", point.Date).Msg("import row failed")
			return err
		}
		imported++
	}

	count, err := store.CountSeriesRows(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("could not count stored rows")
	}

	a.Logger.Info().Int("imported", imported).Int64("total_stored", count).Msg("import complete")
	return nil
}
