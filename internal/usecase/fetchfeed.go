package usecase

import (
	"context"

	"faithnews/internal/domain"
)

// FeedFetcher определяет интерфейс для загрузки сырых данных RSS/Atom-лент.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser определяет интерфейс для преобразования тела ленты в статьи источника.
type FeedParser interface {
	Parse(ctx context.Context, source domain.FeedSource, body []byte) ([]domain.Article, error)
}

// ArticleArchive определяет интерфейс постоянного архива статей.
// Архив необязателен и никогда не используется для наполнения кэша.
type ArticleArchive interface {
	SaveArticles(ctx context.Context, articles []domain.Article) (int, error)
	RecentArticles(ctx context.Context, n int) ([]domain.Article, error)
}
