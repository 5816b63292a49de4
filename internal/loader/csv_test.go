package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "series.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestCSVLoaderParsesAndSorts(t *testing.T) {
	path := writeTempCSV(t, "date,News.Sentiment\n01/03/20,-0.5\n01/01/20,0.25\n01/02/20,0.1\n")

	points, err := NewCSV(path, noopLogger()).LoadSeries(context.Background())
	if err != nil {
		t.Fatalf("LoadSeries returned error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !points[0].Date.Equal(want) {
		t.Fatalf("series must be sorted ascending, first date %s", points[0].Date)
	}
	if !points[0].Value.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("unexpected first value %s", points[0].Value)
	}
}

func TestCSVLoaderAlternateColumnNames(t *testing.T) {
	path := writeTempCSV(t, "date_clean,sentiment,volume\n2021-06-01,0.4,100\n2021-06-02,-0.4,90\n")

	points, err := NewCSV(path, noopLogger()).LoadSeries(context.Background())
	if err != nil {
		t.Fatalf("LoadSeries returned error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if !points[1].Value.Equal(decimal.RequireFromString("-0.4")) {
		t.Fatalf("unexpected value %s", points[1].Value)
	}
}

func TestCSVLoaderSkipsEmptyCells(t *testing.T) {
	path := writeTempCSV(t, "date,sentiment\n01/01/20,0.1\n01/02/20,\n01/03/20,0.3\n")

	points, err := NewCSV(path, noopLogger()).LoadSeries(context.Background())
	if err != nil {
		t.Fatalf("LoadSeries returned error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected empty cells skipped, got %d points", len(points))
	}
}

func TestCSVLoaderMissingSentimentColumn(t *testing.T) {
	path := writeTempCSV(t, "date,price\n01/01/20,10\n")

	if _, err := NewCSV(path, noopLogger()).LoadSeries(context.Background()); err == nil {
		t.Fatal("missing sentiment column must fail")
	}
}

func TestCSVLoaderBadDate(t *testing.T) {
	path := writeTempCSV(t, "date,sentiment\nnot-a-date,0.1\n")

	if _, err := NewCSV(path, noopLogger()).LoadSeries(context.Background()); err == nil {
		t.Fatal("unparseable date must fail")
	}
}
