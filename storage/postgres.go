package storage

import (
	"context"
	"fmt"
	"log/slog"

	"faithnews/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultRecentLimit = 50

// PostgresArchive хранит опубликованные статьи в таблице articles.
// Уникальность обеспечивается по ссылке статьи.
type PostgresArchive struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresArchive создает архив поверх готового пула соединений.
// Миграции должны быть применены заранее.
func NewPostgresArchive(pool *pgxpool.Pool, log *slog.Logger) *PostgresArchive {
	log = log.With(slog.String("component", "storage"))
	log.Info("Initializing Postgres article archive")
	return &PostgresArchive{
		pool: pool,
		log:  log,
	}
}

// Close закрывает пул соединений.
func (db *PostgresArchive) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// SaveArticles сохраняет статьи одной транзакцией. Статьи с уже известной
// ссылкой пропускаются; возвращается число действительно вставленных строк.
func (db *PostgresArchive) SaveArticles(ctx context.Context, articles []domain.Article) (inserted int, err error) {
	const op = "storage.postgres.SaveArticles"
	if len(articles) == 0 {
		return 0, nil
	}
	log := db.log.With(slog.String("op", op))
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()

	batch := &pgx.Batch{}
	query := `
	INSERT INTO articles (article_id, title, description, link, pub_date, source, category, image_url, author)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (link) DO NOTHING;
	`
	for _, a := range articles {
		batch.Queue(query, a.ID, a.Title, a.Description, a.Link, a.PubDate, a.Source, a.Category, a.ImageURL, a.Author)
	}
	results := tx.SendBatch(ctx, batch)
	for range articles {
		tag, execErr := results.Exec()
		if execErr != nil {
			results.Close()
			log.Error("Failed to execute batch", slog.Any("error", execErr))
			err = fmt.Errorf("%s: failed to execute batch: %w", op, execErr)
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err = results.Close(); err != nil {
		log.Error("Failed to close batch", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to close batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	log.Debug("Articles archived", slog.Int("received", len(articles)), slog.Int("inserted", inserted))
	return inserted, nil
}

// RecentArticles возвращает n последних статей архива по дате публикации.
func (db *PostgresArchive) RecentArticles(ctx context.Context, n int) ([]domain.Article, error) {
	limit := n
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	const op = "storage.postgres.RecentArticles"
	log := db.log.With(slog.String("op", op), slog.Int("limit", limit))
	query := `
	SELECT article_id, title, description, link, pub_date, source, category, image_url, author
	FROM articles
	ORDER BY pub_date DESC
	LIMIT $1;
	`
	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	articles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Article, error) {
		var a domain.Article
		err := row.Scan(
			&a.ID,
			&a.Title,
			&a.Description,
			&a.Link,
			&a.PubDate,
			&a.Source,
			&a.Category,
			&a.ImageURL,
			&a.Author,
		)
		return a, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Archived articles retrieved", slog.Int("count", len(articles)))
	return articles, nil
}
