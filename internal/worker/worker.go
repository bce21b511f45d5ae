package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"faithnews/internal/usecase"

	"github.com/robfig/cron/v3"
)

// CacheRefresher определяет интерфейс цикла обновления кэша.
// Используется для внедрения зависимости в воркер.
type CacheRefresher interface {
	Refresh(ctx context.Context) (usecase.RefreshResult, error)
}

// Worker периодически обновляет кэш статей по cron-расписанию.
// Если предыдущий цикл еще идет, очередной запуск пропускается.
type Worker struct {
	refresher CacheRefresher
	schedule  string
	log       *slog.Logger
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	cycles    atomic.Int64
}

// New создает воркер. schedule - выражение cron, например "@every 5m".
func New(refresher CacheRefresher, schedule string, log *slog.Logger) *Worker {
	return &Worker{
		refresher: refresher,
		schedule:  schedule,
		log:       log.With(slog.String("component", "worker")),
	}
}

// RunOnce синхронно выполняет один цикл обновления.
// Вызывается при старте, чтобы API не отдавал пустой кэш.
func (w *Worker) RunOnce(ctx context.Context) {
	w.runCycle(ctx)
}

// Start регистрирует задачу в планировщике и запускает его.
func (w *Worker) Start() error {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	cronLog := cron.PrintfLogger(slog.NewLogLogger(w.log.Handler(), slog.LevelWarn))
	w.cron = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := w.cron.AddFunc(w.schedule, func() { w.runCycle(w.ctx) }); err != nil {
		w.cancel()
		w.cron = nil
		return fmt.Errorf("invalid refresh schedule %q: %w", w.schedule, err)
	}
	w.cron.Start()
	w.log.Info("Cache refresh worker started", slog.String("schedule", w.schedule))
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего цикла.
func (w *Worker) Stop() {
	if w.cron == nil {
		return
	}
	done := w.cron.Stop()
	w.cancel()
	<-done.Done()
	w.log.Info("Worker stopped", slog.Int64("cycles", w.cycles.Load()))
}

// Cycles возвращает число завершенных циклов обновления.
func (w *Worker) Cycles() int64 { return w.cycles.Load() }

// Schedule возвращает cron-выражение воркера.
func (w *Worker) Schedule() string { return w.schedule }

func (w *Worker) runCycle(ctx context.Context) {
	start := time.Now()
	res, err := w.refresher.Refresh(ctx)
	if err != nil {
		w.log.Error("Cache refresh cycle failed", slog.Any("error", err))
		return
	}
	w.cycles.Add(1)
	w.log.Info("Cache refresh cycle completed",
		slog.Int("fetched", res.Fetched),
		slog.Bool("replaced", res.Replaced),
		slog.Duration("duration", time.Since(start)),
	)
}
