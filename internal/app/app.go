package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketpulse/internal/classify"
	"marketpulse/internal/config"
	"marketpulse/internal/infrastructure/health"
	"marketpulse/internal/infrastructure/parser"
	"marketpulse/internal/infrastructure/quotes"
	"marketpulse/internal/infrastructure/scheduler"
	"marketpulse/internal/infrastructure/storage"
	"marketpulse/internal/infrastructure/telegram"
	"marketpulse/internal/source"
	"marketpulse/internal/state"
	"marketpulse/internal/usecase"
)

// App owns every long-lived component and their shutdown order.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	repo   *storage.SQLiteRepository
	driver *scheduler.Driver
	health *health.Server
}

// New wires the full pipeline from configuration. The state repository is
// opened here so a broken state path fails startup instead of the first cycle.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	loc := cfg.Scheduler.Location()

	repo, err := storage.NewSQLiteRepository(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("app: open state repository: %w", err)
	}

	store := state.New(ctx, state.Options{
		Repository:  repo,
		DailyQuota:  cfg.Publication.DailyQuota,
		IdentityCap: cfg.Publication.IdentityCap,
		Location:    loc,
		Logger:      logger,
	})

	client := source.NewClient(cfg.Scheduler.FetchTimeout.Std(), cfg.Markets.Headers)

	feeds := make([]source.Source, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		feeds = append(feeds, parser.NewFeedSource(f.Name, f.URL, client))
	}

	notifier := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	indices := make([]usecase.IndexSpec, 0, len(cfg.Markets.Indices))
	for _, idx := range cfg.Markets.Indices {
		indices = append(indices, usecase.IndexSpec{Name: idx.Name, Symbol: idx.Symbol})
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collector:  source.NewCollector(feeds, cfg.Scheduler.FetchTimeout.Std(), logger),
		Classifier: classify.New(cfg.Publication.StrictLocality),
		Gate:       usecase.NewGate(store, notifier, logger),
		Store:      store,
		Notifier:   notifier,
		Quotes:     quotes.New(client, cfg.Markets.QuoteURL),
		Indices:    indices,
		Listings:   parser.NewIPOScanner(client, cfg.Markets.IPOURL, cfg.Markets.TableLimits["ipo"]),
		Premiums:   parser.NewPremiumScanner(client, cfg.Markets.PremiumURL, cfg.Markets.TableLimits["premium"]),
		Flows:      parser.NewFlowsScanner(client, cfg.Markets.FlowsURL),
		Logger:     logger,
	})

	driver := scheduler.NewDriver(cfg.Scheduler.PollPeriod.Std(), loc, logger, nil)
	driver.Add(scheduler.Job{
		Name:    "news",
		Trigger: scheduler.NewInterval(cfg.Scheduler.NewsInterval.Std(), time.Now().In(loc)),
		Run:     pipeline.NewsCycle,
	})

	for name, at := range cfg.Scheduler.Calendar {
		run, ok := calendarRun(pipeline, name)
		if !ok {
			logger.Warn("unknown calendar job, skipped", "job", name)
			continue
		}
		hour, minute, err := config.CalendarTime(at)
		if err != nil {
			return nil, fmt.Errorf("app: job %s: %w", name, err)
		}
		driver.Add(scheduler.Job{
			Name:    name,
			Trigger: scheduler.NewCalendar(hour, minute),
			Run:     run,
		})
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		driver: driver,
		health: health.New(cfg.Health.Addr, loc, logger),
	}, nil
}

func calendarRun(p *usecase.Pipeline, name string) (func(ctx context.Context), bool) {
	switch name {
	case "premarket":
		return func(ctx context.Context) { p.MarketSnapshot(ctx, "📊 Pre-Market Snapshot") }, true
	case "midday":
		return func(ctx context.Context) { p.MarketSnapshot(ctx, "⏱️ Midday Check") }, true
	case "close":
		return p.ClosingSummary, true
	case "ipo-morning", "ipo-evening":
		return p.IPODigest, true
	case "reset":
		return p.ResetDay, true
	}
	return nil, false
}

// Run starts the probe server and the cadence driver, then blocks until the
// context is cancelled. Shutdown waits for in-flight jobs.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting",
		"timezone", a.cfg.Scheduler.Timezone,
		"feeds", len(a.cfg.Feeds),
		"dailyQuota", a.cfg.Publication.DailyQuota,
	)

	a.health.Start()
	a.driver.Start(ctx)

	<-ctx.Done()
	a.logger.Info("shutting down")

	a.driver.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.health.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("health server shutdown", "error", err)
	}

	if err := a.repo.Close(); err != nil {
		return fmt.Errorf("app: close state repository: %w", err)
	}
	return nil
}
