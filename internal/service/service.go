package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sentiment-event-alerts/internal/alerting"
	"sentiment-event-alerts/internal/config"
	"sentiment-event-alerts/internal/detector"
	"sentiment-event-alerts/internal/loader"
	"sentiment-event-alerts/internal/scheduler"
	"sentiment-event-alerts/internal/storage"
)

// Service orchestrates loading, detection, persistence, and alerting.
type Service struct {
	scheduler   *scheduler.Scheduler
	loader      loader.SeriesLoader
	detector    *detector.Detector
	seriesStore storage.SeriesStore
	eventStore  storage.EventStore
	notifier    alerting.Notifier
	logger      zerolog.Logger

	channels []string
	alertsOn bool
	locker   storage.AdvisoryLocker
	lockKey  int64
}

// New constructs the detection service.
func New(cfg *config.Config, sched *scheduler.Scheduler, ld loader.SeriesLoader, det *detector.Detector, seriesStore storage.SeriesStore, eventStore storage.EventStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := seriesStore.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:   sched,
		loader:      ld,
		detector:    det,
		seriesStore: seriesStore,
		eventStore:  eventStore,
		notifier:    notifier,
		logger:      logger.With().Str("component", "service").Logger(),
		channels:    cfg.Alerting.Channels,
		alertsOn:    cfg.Alerting.Enabled,
		locker:      locker,
		lockKey:     cfg.Scheduler.AdvisoryLockKey,
	}
}

// Run begins the periodic detection loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessBucket)
}

// ProcessBucket executes one full detection pass.
func (s *Service) ProcessBucket(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeBucket(ctx, bucket)
}

func (s *Service) executeBucket(ctx context.Context, bucket time.Time) error {
	series, err := s.loader.LoadSeries(ctx)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	if len(series) == 0 {
		s.logger.Warn().Time("bucket", bucket).Msg("series is empty; nothing to detect")
		return nil
	}

	rows, summary, err := s.detector.Run(series)
	if err != nil {
		return fmt.Errorf("run detection: %w", err)
	}

	known, err := s.knownEventDates(ctx, series)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list existing events; all events treated as new")
		known = nil
	}

	if s.seriesStore != nil {
		for _, row := range rows {
			record := storage.SeriesRow{
				Date:     row.Date,
				Value:    row.Value,
				Smoothed: row.Smoothed,
				LocalMin: row.LocalMin,
				LocalMax: row.LocalMax,
				Score:    row.Score,
			}
			if err := s.seriesStore.UpsertSeriesRow(ctx, record); err != nil {
				s.logger.Error().Err(err).Time("obs_date", row.Date).Msg("failed to upsert series row")
			}
		}
	}

	valueByDate := make(map[time.Time]detector.Row, len(rows))
	for _, row := range rows {
		valueByDate[row.Date] = row
	}

	events := detector.Events(rows)
	for _, event := range events {
		if s.eventStore != nil {
			record := storage.EventRecord{
				Date:     event.Date,
				Type:     string(event.Type),
				Score:    event.Score,
				Channels: s.channels,
			}
			if _, err := s.eventStore.UpsertEvent(ctx, record); err != nil {
				s.logger.Error().Err(err).Time("event_date", event.Date).Msg("failed to persist event")
			}
		}

		if known[eventKey(event.Date, string(event.Type))] {
			continue
		}

		s.logger.Info().
			Time("event_date", event.Date).
			Str("event_type", string(event.Type)).
			Str("extremity_score", event.Score.String()).
			Msg("new sentiment event")

		if s.alertsOn && s.notifier != nil {
			note := alerting.Notification{
				EventDate: event.Date,
				EventType: string(event.Type),
				Score:     event.Score,
				Sentiment: valueByDate[event.Date].Value,
				Channels:  s.channels,
			}
			if err := s.notifier.Notify(ctx, note); err != nil {
				s.logger.Error().Err(err).Time("event_date", event.Date).Msg("failed to dispatch alert")
			}
		}
	}

	s.logger.Info().Time("bucket", bucket).
		Int("observations", summary.Observations).
		Int("events", len(events)).
		Int("removed_by_spacing", summary.RemovedBySpacing).
		Msg("detection pass recorded")

	return nil
}

// knownEventDates loads the already persisted events covering the series
// span, keyed by date and type, so alerts only fire for new selections.
func (s *Service) knownEventDates(ctx context.Context, series []detector.Point) (map[string]bool, error) {
	if s.eventStore == nil {
		return nil, nil
	}

	from := series[0].Date
	to := series[len(series)-1].Date.Add(24 * time.Hour)
	existing, err := s.eventStore.ListEventsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(existing))
	for _, rec := range existing {
		known[eventKey(rec.Date, rec.Type)] = true
	}
	return known, nil
}

func eventKey(date time.Time, typ string) string {
	return date.UTC().Format("2006-01-02") + "/" + typ
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
