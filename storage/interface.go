package storage

import (
	"context"

	"faithnews/internal/domain"
)

// Storage определяет интерфейс постоянного архива статей.
// Кэш ленты живет в памяти; архив только накапливает опубликованные статьи.
type Storage interface {
	SaveArticles(ctx context.Context, articles []domain.Article) (int, error)
	RecentArticles(ctx context.Context, n int) ([]domain.Article, error)
	Close()
}
