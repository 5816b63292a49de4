package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sentiment-event-alerts/internal/alerting"
	"sentiment-event-alerts/internal/config"
	"sentiment-event-alerts/internal/detector"
	"sentiment-event-alerts/internal/storage"
)

type staticLoader struct {
	series []detector.Point
}

func (s *staticLoader) LoadSeries(ctx context.Context) ([]detector.Point, error) {
	return s.series, nil
}

type memorySeriesStore struct {
	rows map[string]storage.SeriesRow
}

func (m *memorySeriesStore) UpsertSeriesRow(ctx context.Context, row storage.SeriesRow) error {
	if m.rows == nil {
		m.rows = make(map[string]storage.SeriesRow)
	}
	m.rows[row.Date.Format("2006-01-02")] = row
	return nil
}

func (m *memorySeriesStore) ListSeriesBetween(ctx context.Context, from, to time.Time) ([]storage.SeriesRow, error) {
	return nil, nil
}

func (m *memorySeriesStore) CountSeriesRows(ctx context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

type memoryEventStore struct {
	events map[string]storage.EventRecord
}

func (m *memoryEventStore) UpsertEvent(ctx context.Context, record storage.EventRecord) (storage.EventRecord, error) {
	if m.events == nil {
		m.events = make(map[string]storage.EventRecord)
	}
	m.events[record.Date.Format("2006-01-02")] = record
	return record, nil
}

func (m *memoryEventStore) ListEventsBetween(ctx context.Context, from, to time.Time) ([]storage.EventRecord, error) {
	out := make([]storage.EventRecord, 0, len(m.events))
	for _, rec := range m.events {
		if !rec.Date.Before(from) && rec.Date.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryEventStore) ListRecentEvents(ctx context.Context, limit int) ([]storage.EventRecord, error) {
	return nil, nil
}

func (m *memoryEventStore) DeleteEventsBefore(ctx context.Context, olderThan time.Time) error {
	return nil
}

type recordingNotifier struct {
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	r.notes = append(r.notes, note)
	return nil
}

func troughSeries() []detector.Point {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]detector.Point, 40)
	for i := range points {
		v := int64(0)
		if i == 20 {
			v = -10
		}
		if i == 23 {
			v = 6
		}
		points[i] = detector.Point{Date: base.AddDate(0, 0, i), Value: decimal.NewFromInt(v)}
	}
	return points
}

func testService(t *testing.T, seriesStore storage.SeriesStore, eventStore storage.EventStore, notifier alerting.Notifier) *Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.Alerting.Enabled = true
	cfg.Alerting.Channels = []string{"telegram"}

	det, err := detector.New(detector.Config{
		SmoothingWindow:   1,
		ExtremaHalfWindow: 5,
		LookaheadDays:     10,
		TopKPerYear:       1,
		MinSeparationDays: 30,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("detector.New: %v", err)
	}

	ld := &staticLoader{series: troughSeries()}
	return New(cfg, nil, ld, det, seriesStore, eventStore, notifier, zerolog.Nop())
}

func TestProcessBucketPersistsAndAlerts(t *testing.T) {
	seriesStore := &memorySeriesStore{}
	eventStore := &memoryEventStore{}
	notifier := &recordingNotifier{}

	svc := testService(t, seriesStore, eventStore, notifier)
	bucket := time.Now().UTC()

	if err := svc.ProcessBucket(context.Background(), bucket); err != nil {
		t.Fatalf("ProcessBucket returned error: %v", err)
	}

	if len(seriesStore.rows) != 40 {
		t.Fatalf("expected all 40 observations persisted, got %d", len(seriesStore.rows))
	}
	if len(eventStore.events) == 0 {
		t.Fatal("expected at least one event persisted")
	}
	if len(notifier.notes) != len(eventStore.events) {
		t.Fatalf("every new event should alert once: %d notes for %d events", len(notifier.notes), len(eventStore.events))
	}

	note := notifier.notes[0]
	if note.EventType != "min" {
		t.Fatalf("expected a trough alert, got %q", note.EventType)
	}
	if !note.Sentiment.Equal(decimal.NewFromInt(-10)) {
		t.Fatalf("alert should carry the raw sentiment, got %s", note.Sentiment)
	}
}

func TestProcessBucketDoesNotReAlertKnownEvents(t *testing.T) {
	seriesStore := &memorySeriesStore{}
	eventStore := &memoryEventStore{}
	notifier := &recordingNotifier{}

	svc := testService(t, seriesStore, eventStore, notifier)

	if err := svc.ProcessBucket(context.Background(), time.Now().UTC()); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	first := len(notifier.notes)

	if err := svc.ProcessBucket(context.Background(), time.Now().UTC()); err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if len(notifier.notes) != first {
		t.Fatalf("re-detected events must not re-alert: %d then %d", first, len(notifier.notes))
	}
}
