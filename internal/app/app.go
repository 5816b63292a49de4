package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"sentiment-event-alerts/internal/alerting"
	"sentiment-event-alerts/internal/config"
	"sentiment-event-alerts/internal/detector"
	"sentiment-event-alerts/internal/loader"
	"sentiment-event-alerts/internal/scheduler"
	"sentiment-event-alerts/internal/service"
	"sentiment-event-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newLoader() loader.SeriesLoader {
	if a.Config.Loader.Source == "http" {
		return loader.NewHTTP(loader.HTTPOptions{
			BaseURL:   a.Config.Loader.BaseURL,
			Path:      a.Config.Loader.SeriesPath,
			Timeout:   a.Config.Loader.RequestTimeout,
			UserAgent: a.Config.Loader.UserAgent,
		}, a.Logger)
	}
	return loader.NewCSV(a.Config.Loader.CSVPath, a.Logger)
}

func (a *App) newDetector(cfg detector.Config) (*detector.Detector, error) {
	return detector.New(cfg, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running watch service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		RunOnStart:   a.Config.Scheduler.RunOnStart,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	det, err := a.newDetector(a.Config.Detector)
	if err != nil {
		return err
	}

	var seriesStore storage.SeriesStore
	var eventStore storage.EventStore
	if store != nil {
		seriesStore = store
		eventStore = store
	}

	svc := service.New(a.Config, sched, a.newLoader(), det, seriesStore, eventStore, a.newNotifier(), a.Logger)

	a.Logger.Info().Msg("starting sentiment watch service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("sentiment watch service stopped")
	return nil
}

// DetectOptions hold parameters for a one-shot detection run.
type DetectOptions struct {
	Input    string
	CSVPath  string
	PNGPath  string
	Persist  bool
	Detector detector.Config
}

// ExportOptions hold parameters for exporting the labeled series.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ImportOptions configure the series import job.
type ImportOptions struct {
	Input  string
	DryRun bool
}
