package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"faithnews/internal/adapter/fetcher"
	"faithnews/internal/adapter/parser"
	"faithnews/internal/cache"
	"faithnews/internal/config"
	"faithnews/internal/logger"
	"faithnews/internal/migrations"
	server "faithnews/internal/transport/http"
	"faithnews/internal/usecase"
	"faithnews/internal/worker"
	"faithnews/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// App представляет сервис faithnews.
// Координирует работу всех компонентов: HTTP-сервера, воркера обновления кэша,
// необязательного архива в PostgreSQL и системы логирования.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	worker   *worker.Worker
	archive  storage.Storage
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// components - общая часть графа зависимостей для serve и check.
type components struct {
	collector *usecase.FeedCollector
	store     *cache.Store
	schedule  cron.Schedule
}

func buildComponents(cfg *config.Config, log *slog.Logger) (*components, error) {
	schedule, err := cron.ParseStandard(cfg.App.RefreshSchedule)
	if err != nil {
		return nil, fmt.Errorf("bad refresh schedule: %w", err)
	}
	httpFetcher := fetcher.NewHTTPFetcher(log, cfg.App.UserAgent, cfg.App.FetchTimeoutDuration(), cfg.App.MaxFeedBytes)
	placeholders := parser.NewPlaceholderPicker(parser.NewSeededRand(cfg.App.PlaceholderSeed))
	feedParser := parser.NewFeedParser(log, placeholders)
	return &components{
		collector: usecase.NewFeedCollector(httpFetcher, feedParser, log, cfg.App.FetchConcurrency),
		store:     cache.New(),
		schedule:  schedule,
	}, nil
}

func openArchive(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (storage.Storage, error) {
	dbPool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := migrations.Apply(ctx, log, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return storage.NewPostgresArchive(dbPool, log), nil
}

// New создает и инициализирует приложение.
// Архив подключается только при database.enabled; без него сервис полностью работоспособен.
func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	var archive storage.Storage
	if cfg.Database.Enabled {
		archive, err = openArchive(context.Background(), cfg.Database, appLogger)
		if err != nil {
			return nil, err
		}
	}

	c, err := buildComponents(cfg, appLogger)
	if err != nil {
		if archive != nil {
			archive.Close()
		}
		return nil, fmt.Errorf("bad init app: %w", err)
	}

	var articleArchive usecase.ArticleArchive
	if archive != nil {
		articleArchive = archive
	}
	refresher := usecase.NewRefreshUseCase(c.collector, cfg.App.Sources, c.store, c.schedule, articleArchive, appLogger)
	newsGetter := usecase.NewNewsGetterUseCase(c.store, refresher, cfg.App.Sources, articleArchive)

	handler := server.NewHandler(appLogger, newsGetter, refresher, server.PageLimits{
		Default: cfg.App.DefaultPageSize,
		Max:     cfg.App.MaxPageSize,
	})
	router := server.NewServer(appLogger, handler, cfg.Server)

	return &App{
		config: cfg,
		logger: appLogger,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		worker:   worker.New(refresher, cfg.App.RefreshSchedule, appLogger),
		archive:  archive,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// Run заполняет кэш, запускает воркер и HTTP-сервер и блокируется до сигнала
// завершения или падения сервера.
func (a *App) Run() error {
	a.logger.Info("Starting faithnews",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.config.App.Sources)),
		slog.String("refresh_schedule", a.worker.Schedule()),
		slog.Bool("archive", a.archive != nil),
	)
	a.worker.RunOnce(context.Background())
	if err := a.worker.Start(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.worker.Stop()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
			serveErr <- err
		}
	}()

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serveErr:
		_ = a.Shutdown()
		return fmt.Errorf("http server: %w", err)
	}
	return a.Shutdown()
}

// Shutdown останавливает воркер, завершает HTTP-сервер с таймаутом
// server.shutdown_timeout и закрывает архив.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown")
	if a.worker != nil {
		a.worker.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeoutDuration())
	defer cancel()
	var shutdownErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		shutdownErr = err
	}
	if a.archive != nil {
		a.archive.Close()
	}
	a.wg.Wait()
	a.logger.Info("Application stopped gracefully")
	return shutdownErr
}

// Check один раз опрашивает все ленты и печатает отчет по источникам в out.
// Возвращает ошибку, если ни один источник не дал статей.
func Check(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	c, err := buildComponents(cfg, log)
	if err != nil {
		return err
	}
	results := c.collector.Collect(ctx, cfg.App.Sources)
	return writeReport(out, results)
}

func writeReport(out io.Writer, results []usecase.SourceResult) error {
	ok, total := 0, 0
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "FAIL " + r.Err.Error()
		} else {
			ok++
		}
		total += len(r.Articles)
		if _, err := fmt.Fprintf(out, "%-40s %-18s %4d  %8s  %s\n",
			r.Source.Name, r.Source.Category, len(r.Articles), r.Duration.Round(time.Millisecond), status); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(out, "\n%d/%d sources ok, %d articles\n", ok, len(results), total); err != nil {
		return err
	}
	if total == 0 {
		return errors.New("no articles fetched from any source")
	}
	return nil
}
