package app

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sentiment-event-alerts/internal/detector"
)

// Export renders the stored labeled series as CSV and/or an annotated PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.AddDate(-10, 0, 0)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	stored, err := store.ListSeriesBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		a.Logger.Info().Msg("no observations found for export window")
		return nil
	}

	rows := make([]detector.Row, len(stored))
	for i, sr := range stored {
		rows[i] = detector.Row{
			Date:     sr.Date,
			Value:    sr.Value,
			Smoothed: sr.Smoothed,
			LocalMin: sr.LocalMin,
			LocalMax: sr.LocalMax,
			Score:    sr.Score,
		}
	}

	downsampled := downsampleRows(rows, opts.MaxPoints)
	a.Logger.Info().Int("total", len(rows)).Int("exported", len(downsampled)).Msg("exporting labeled series")

	if opts.CSVPath != "" {
		if err := writeLabeledCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSeriesPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

// downsampleRows thins the series for charting while always retaining event
// rows, so annotations never disappear from the exported chart.
func downsampleRows(rows []detector.Row, max int) []detector.Row {
	if max <= 0 || len(rows) <= max {
		return rows
	}

	keep := make(map[int]bool, max)
	step := float64(len(rows)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(rows) {
			idx = len(rows) - 1
		}
		keep[idx] = true
	}
	for i, row := range rows {
		if row.LocalMin || row.LocalMax {
			keep[i] = true
		}
	}

	result := make([]detector.Row, 0, len(keep))
	for i, row := range rows {
		if keep[i] {
			result = append(result, row)
		}
	}
	return result
}

func writeSeriesPNG(path string, rows []detector.Row) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(rows))
	raw := make([]float64, len(rows))
	smoothed := make([]float64, len(rows))

	for i, row := range rows {
		x[i] = row.Date
		raw[i] = row.Value.InexactFloat64()
		smoothed[i] = row.Smoothed.InexactFloat64()
	}

	annotations := make([]chart.Value2, 0)
	for _, row := range rows {
		if !row.LocalMin && !row.LocalMax {
			continue
		}
		label := "min"
		if row.LocalMax {
			label = "max"
		}
		annotations = append(annotations, chart.Value2{
			XValue: chart.TimeToFloat64(row.Date),
			YValue: row.Smoothed.InexactFloat64(),
			Label:  label + " " + row.Date.Format("2006-01-02"),
		})
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.3f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Sentiment",
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Sentiment",
				XValues: x,
				YValues: raw,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlue.WithAlpha(80),
				},
			},
			chart.TimeSeries{
				Name:    "Smoothed",
				XValues: x,
				YValues: smoothed,
			},
			chart.AnnotationSeries{
				Annotations: annotations,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
