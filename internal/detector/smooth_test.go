package detector

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func seriesFromInts(values ...int) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Date: day(i), Value: decimal.NewFromInt(int64(v))}
	}
	return points
}

func TestSmoothWindowOneIsIdentity(t *testing.T) {
	series := seriesFromInts(3, 1, 4, 1, 5)
	values := smooth(series, 1)

	if len(values) != len(series) {
		t.Fatalf("expected %d values, got %d", len(series), len(values))
	}
	for i, v := range values {
		if !v.Equal(series[i].Value) {
			t.Fatalf("index %d: expected %s, got %s", i, series[i].Value, v)
		}
	}
}

func TestSmoothCenteredMean(t *testing.T) {
	series := seriesFromInts(1, 2, 3, 4)
	values := smooth(series, 3)

	expected := []string{"1.5", "2", "3", "3.5"}
	for i, want := range expected {
		if !values[i].Equal(decimal.RequireFromString(want)) {
			t.Fatalf("index %d: expected %s, got %s", i, want, values[i])
		}
	}
}

func TestSmoothBoundaryUsesAvailableCount(t *testing.T) {
	// Window 5 on a 3-point series must never divide by the full window.
	series := seriesFromInts(6, 0, 6)
	values := smooth(series, 5)

	four := decimal.NewFromInt(4)
	for i, v := range values {
		if !v.Equal(four) {
			t.Fatalf("index %d: expected 4, got %s", i, v)
		}
	}
}
