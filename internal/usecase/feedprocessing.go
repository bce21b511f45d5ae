package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"faithnews/internal/domain"

	"golang.org/x/sync/errgroup"
)

// SourceResult - итог обработки одного источника за цикл.
type SourceResult struct {
	Source   domain.FeedSource
	Articles []domain.Article
	Err      error
	Duration time.Duration
}

// FeedCollector загружает и разбирает все ленты параллельно.
// Ошибка одного источника не влияет на остальные: источник просто не дает статей.
type FeedCollector struct {
	fetcher     FeedFetcher
	parser      FeedParser
	log         *slog.Logger
	concurrency int
}

// NewFeedCollector создает сборщик статей.
// concurrency ограничивает число одновременных загрузок; ноль и меньше снимают ограничение.
func NewFeedCollector(fetcher FeedFetcher, parser FeedParser, log *slog.Logger, concurrency int) *FeedCollector {
	return &FeedCollector{
		fetcher:     fetcher,
		parser:      parser,
		log:         log,
		concurrency: concurrency,
	}
}

// FetchAll возвращает объединение статей всех источников.
// Метод дожидается завершения каждой загрузки и никогда не возвращает ошибку.
func (c *FeedCollector) FetchAll(ctx context.Context, sources []domain.FeedSource) []domain.Article {
	results := c.Collect(ctx, sources)
	total := 0
	for _, r := range results {
		total += len(r.Articles)
	}
	articles := make([]domain.Article, 0, total)
	for _, r := range results {
		articles = append(articles, r.Articles...)
	}
	return articles
}

// Collect обрабатывает все источники и возвращает отчет в порядке списка sources.
func (c *FeedCollector) Collect(ctx context.Context, sources []domain.FeedSource) []SourceResult {
	start := time.Now()
	log := c.log.With(slog.String("component", "collector"))
	log.Info("Feed collection started", slog.Int("feed_to_process", len(sources)))

	results := make([]SourceResult, len(sources))
	var successCount, errorCount atomic.Int64

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, src := range sources {
		g.Go(func() error {
			results[i] = c.processFeed(ctx, src)
			if results[i].Err != nil {
				errorCount.Add(1)
			} else {
				successCount.Add(1)
			}
			// Ошибки не возвращаются, чтобы не прерывать остальные загрузки.
			return nil
		})
	}
	_ = g.Wait()

	log.Info("Feed collection completed",
		slog.Int("successful", int(successCount.Load())),
		slog.Int("errors", int(errorCount.Load())),
		slog.Int("total", len(sources)),
		slog.Duration("duration", time.Since(start)),
	)
	return results
}

// processFeed выполняет загрузку и разбор одной ленты.
func (c *FeedCollector) processFeed(ctx context.Context, src domain.FeedSource) SourceResult {
	start := time.Now()
	log := c.log.With(
		slog.String("component", "feed-processor"),
		slog.String("feed", src.Name),
		slog.String("url", src.URL),
	)
	result := SourceResult{Source: src, Articles: []domain.Article{}}

	body, err := c.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		log.Error("Feed fetch failed", slog.String("stage", "fetch"), slog.Any("error", err))
		result.Err = fmt.Errorf("fetch failed for %s: %w", src.Name, err)
		result.Duration = time.Since(start)
		return result
	}

	articles, err := c.parser.Parse(ctx, src, body)
	if err != nil {
		log.Error("Feed parsing failed", slog.String("stage", "parse"), slog.Any("error", err))
		result.Err = fmt.Errorf("parse failed for %s: %w", src.Name, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Articles = articles
	result.Duration = time.Since(start)
	log.Debug("Feed processed",
		slog.Int("items_parsed", len(articles)),
		slog.Duration("duration", result.Duration),
	)
	return result
}
