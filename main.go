package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"ss-scraper/config"
	"ss-scraper/models"
	"ss-scraper/notify"
	"ss-scraper/scraper/ss"
	"ss-scraper/services"
	"ss-scraper/storage"
	"ss-scraper/utils"
)

func main() {
	logger := utils.NewLogger()

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.SetDebug(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Run failed: %v", err)
		stop()
		os.Exit(1)
	}
}

// app carries the collaborators shared by one category run.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	runID    string
	pipeline *ss.Pipeline
	notifier *notify.Notifier
	dest     string
	insights *services.InsightService
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	runID := uuid.NewString()

	category, err := models.LookupCategory(cfg.Category)
	if err != nil {
		return err
	}
	overrides, err := config.LoadCategoryOverrides(cfg.CategoriesPath)
	if err != nil {
		return err
	}
	if category, err = overrides.Apply(category); err != nil {
		return err
	}

	logger.Info("=== ss.lv scraper starting === run %s | category: %s | store: %s",
		runID, category.Name, storeName(cfg))
	if cfg.DryRun {
		logger.Warn("Dry run: records will not be saved and messages will only be logged")
	}

	creds := &config.Credentials{}
	if cfg.UsePostgres || !cfg.DryRun {
		if creds, err = config.LoadCredentials(cfg.CredsPath); err != nil {
			return err
		}
	}
	if err := creds.Validate(cfg.UsePostgres, !cfg.DryRun); err != nil {
		return err
	}

	dest := category.Destination
	if !cfg.DryRun {
		if dest, err = creds.ChatID(category.Destination); err != nil {
			return err
		}
	}

	db, err := openStore(ctx, cfg, creds, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	fetcher, err := ss.NewFetcher(cfg.Fetcher, ss.FetcherConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
	}, logger)
	if err != nil {
		return err
	}
	pipeline := ss.NewPipeline(fetcher, utils.NewThrottle(cfg.PageDelay), logger)
	defer pipeline.Close()

	opener := notify.TelegramOpener(creds.BotToken)
	if cfg.DryRun {
		opener = func(context.Context) (notify.Channel, error) {
			return notify.LogChannel{Logger: logger}, nil
		}
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		runID:    runID,
		pipeline: pipeline,
		notifier: notify.NewNotifier(opener, logger),
		dest:     dest,
		insights: services.NewInsightService(logger),
	}

	switch category.Name {
	case models.CategoryFlats:
		return runCategory(ctx, a, services.FlatsVertical(category),
			storage.NewSQLStore(db, storage.FlatTable), storage.FlatTable, notify.FlatFormatter())
	case models.CategoryCars:
		return runCategory(ctx, a, services.CarsVertical(category),
			storage.NewSQLStore(db, storage.CarTable), storage.CarTable, notify.CarFormatter())
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownCategory, category.Name)
	}
}

func storeName(cfg *config.Config) string {
	if cfg.UsePostgres {
		return "postgres"
	}
	return "sqlite " + cfg.SQLitePath
}

func openStore(ctx context.Context, cfg *config.Config, creds *config.Credentials, logger *utils.Logger) (*storage.DB, error) {
	var (
		db  *storage.DB
		err error
	)
	if cfg.UsePostgres {
		db, err = storage.OpenPostgres(ctx, creds.Postgres(cfg.PostgresSSLMode), logger)
	} else {
		db, err = storage.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}

	version, err := storage.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("[storage] %s schema at version %d", db.Dialect(), version)
	return db, nil
}

// runCategory scrapes one category, merges it into store, saves the result
// and reports the fresh offers. A failed scrape leaves store untouched.
func runCategory[T models.Record](ctx context.Context, a *app, v services.Vertical[T], store storage.RecordStore[T], table storage.Table[T], format notify.Formatter[T]) error {
	prior, err := store.Load(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("[storage] Loaded %d stored %s records", len(prior), v.Category.Name)

	now := time.Now().Round(0)
	scraped, err := ss.Scrape(ctx, a.pipeline, v, now)
	if err != nil {
		return err
	}

	if a.cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(a.cfg.CSVOutputPath, table)
		if err == nil {
			err = export(w, scraped)
		}
		if err != nil {
			a.logger.Error("CSV export failed: %v", err)
		} else {
			a.logger.Info("Scraped records exported to %s", a.cfg.CSVOutputPath)
		}
	}

	combined, added := services.Merge(prior, scraped, v.Category.DedupKeys)
	a.logger.Info("[merge] %d scraped, %d new, %d stored in total", len(scraped), added, len(combined))

	if a.cfg.DryRun {
		a.logger.Info("[storage] Dry run: skipping save of %d records", len(combined))
	} else {
		if err := store.Save(ctx, combined); err != nil {
			return err
		}
		a.logger.Info("[storage] Saved %d %s records", len(combined), v.Category.Name)
	}

	fresh := services.SelectFresh(combined, v, now)
	a.insights.Print(services.Summarize(v, a.runID, scraped, combined, added, fresh))

	return a.notifier.Dispatch(ctx, a.dest, format.Messages(fresh))
}

func export[T models.Record](w storage.RecordExporter[T], records []T) error {
	if err := w.Export(records); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
