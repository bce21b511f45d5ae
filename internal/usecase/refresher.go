package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"faithnews/internal/cache"
	"faithnews/internal/diversity"
	"faithnews/internal/domain"

	"golang.org/x/sync/singleflight"
)

// ArticleCollector собирает статьи всех источников за один цикл.
type ArticleCollector interface {
	FetchAll(ctx context.Context, sources []domain.FeedSource) []domain.Article
}

// Schedule вычисляет время следующего планового обновления.
// Реализуется cron.Schedule.
type Schedule interface {
	Next(time.Time) time.Time
}

// RefreshResult описывает результат одного цикла обновления кэша.
type RefreshResult struct {
	Snapshot *cache.Snapshot
	// Fetched - сколько статей дал цикл; ноль означает, что кэш сохранил прежние статьи.
	Fetched  int
	Replaced bool
	Duration time.Duration
}

// RefreshUseCase выполняет цикл обновления кэша: загрузка всех лент,
// сортировка по дате, распределение по источникам и замена снимка.
// Одновременные вызовы объединяются в один цикл.
type RefreshUseCase struct {
	collector ArticleCollector
	sources   []domain.FeedSource
	store     *cache.Store
	schedule  Schedule
	archive   ArticleArchive
	log       *slog.Logger
	group     singleflight.Group
	now       func() time.Time

	// archiveTimeout ограничивает запись одного цикла в архив.
	archiveTimeout time.Duration
}

const defaultArchiveTimeout = 30 * time.Second

// NewRefreshUseCase создает сценарий обновления. archive может быть nil.
func NewRefreshUseCase(
	collector ArticleCollector,
	sources []domain.FeedSource,
	store *cache.Store,
	schedule Schedule,
	archive ArticleArchive,
	log *slog.Logger,
) *RefreshUseCase {
	return &RefreshUseCase{
		collector: collector,
		sources:   sources,
		store:     store,
		schedule:  schedule,
		archive:   archive,
		log:       log,
		now:       time.Now,

		archiveTimeout: defaultArchiveTimeout,
	}
}

// Refresh запускает цикл обновления или присоединяется к уже идущему.
// Отмена ctx вызывающего не прерывает начатый цикл: загрузки ограничены своими таймаутами.
func (r *RefreshUseCase) Refresh(ctx context.Context) (RefreshResult, error) {
	if err := ctx.Err(); err != nil {
		return RefreshResult{}, err
	}
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx)), nil
	})
	if err != nil {
		return RefreshResult{}, err
	}
	if shared {
		r.log.Debug("Joined running refresh", slog.String("component", "refresher"))
	}
	return v.(RefreshResult), nil
}

func (r *RefreshUseCase) refresh(ctx context.Context) RefreshResult {
	start := time.Now()
	log := r.log.With(slog.String("component", "refresher"), slog.String("op", "cache.refresh"))
	log.Info("Cache refresh started", slog.Int("sources", len(r.sources)))

	articles := r.collector.FetchAll(ctx, r.sources)
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PubDate.After(articles[j].PubDate)
	})
	distributed := diversity.Distribute(articles)

	updatedAt := r.now()
	snap, replaced := r.store.Replace(distributed, updatedAt, r.schedule.Next(updatedAt))
	if !replaced {
		log.Warn("Refresh produced no articles, keeping previous cache",
			slog.Int("cached_articles", len(snap.Articles)),
		)
	}

	if r.archive != nil && replaced {
		archiveCtx, cancel := context.WithTimeout(ctx, r.archiveTimeout)
		saved, err := r.archive.SaveArticles(archiveCtx, distributed)
		cancel()
		if err != nil {
			log.Error("Archive save failed", slog.Any("error", err))
		} else {
			log.Debug("Articles archived", slog.Int("saved", saved))
		}
	}

	result := RefreshResult{
		Snapshot: snap,
		Fetched:  len(distributed),
		Replaced: replaced,
		Duration: time.Since(start),
	}
	log.Info("Cache refresh completed",
		slog.Int("articles", len(snap.Articles)),
		slog.Int("unique_sources", len(domain.UniqueSources(snap.Articles))),
		slog.Time("next_update", snap.NextUpdate),
		slog.Duration("duration", result.Duration),
	)
	return result
}
