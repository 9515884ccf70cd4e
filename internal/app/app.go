package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ContentPlanner/internal/config"
	"ContentPlanner/internal/infrastructure/catalogjson"
	"ContentPlanner/internal/infrastructure/export"
	"ContentPlanner/internal/infrastructure/scheduler"
	"ContentPlanner/internal/infrastructure/telegram"
	"ContentPlanner/internal/logging"
	"ContentPlanner/internal/planner"
	"ContentPlanner/internal/ports"
	"ContentPlanner/internal/usecase"
)

// Application wires config to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	ledger    ports.HistoryLedger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	closeFn   func() error
}

// New builds a runnable application instance. The ledger is passed in so
// the caller owns opening and closing the database file.
func New(cfg config.Config, ledger ports.HistoryLedger, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source := catalogjson.New(cfg.Catalog.Path, logging.Component(baseLogger, "catalog"))

	seed := cfg.Planner.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	engine := planner.NewEngine(source, ledger, rng, logging.Component(baseLogger, "planner"))
	selector := planner.NewSelector(ledger, rng)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChannelIDs,
		)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Ledger:   ledger,
		Engine:   engine,
		Selector: selector,
		Exporter: export.NewExcelRenderer(),
		Notifier: notifier,
		Params: planner.Params{
			Weeks:       cfg.Planner.Weeks,
			PostsPerDay: cfg.Planner.PostsPerDay,
			SlotTimes:   cfg.Posting.Times,
		},
		ExportDir: cfg.Planner.ExportDir,
		Logger:    logging.Component(baseLogger, "pipeline"),
	})

	driver, err := scheduler.NewPostingScheduler(
		cfg.Posting.Times, cfg.Posting.Location(),
		logging.Component(baseLogger, "scheduler"))
	if err != nil {
		return nil, fmt.Errorf("build posting scheduler: %w", err)
	}

	firstSlot := ""
	if len(cfg.Posting.Times) > 0 {
		firstSlot = cfg.Posting.Times[0]
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		ledger:    ledger,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline, firstSlot),
	}, nil
}

// Run starts the posting loop and blocks until the context is cancelled or
// a termination signal arrives.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("posting loop started",
		"times", a.cfg.Posting.Times, "timezone", a.cfg.Posting.Timezone)

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// PlanOnce runs a single planning pass for the given start day; used by the
// plan subcommand.
func (a *Application) PlanOnce(ctx context.Context, day time.Time) error {
	plan, err := a.pipeline.PlanWeek(ctx, day)
	if err != nil {
		return err
	}
	for _, shortfall := range plan.Shortfalls {
		a.logger.Warn("under-placed item",
			"item", shortfall.Item.Title, "period", shortfall.Period,
			"achieved", shortfall.Achieved, "target", shortfall.Target)
	}
	return nil
}
