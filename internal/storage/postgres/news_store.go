package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/krishilink/agrimarket-crawler/internal/scrape"
)

// NewsStore persists news batches in Postgres, partitioned by source label.
type NewsStore struct {
	db DB
}

// NewNewsStore constructs a NewsStore on top of an existing pool.
func NewNewsStore(db DB) (*NewsStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &NewsStore{db: db}, nil
}

// ReplaceSource deletes all rows whose source matches the label pattern
// and inserts the new batch inside one transaction. An empty batch is a
// no-op so a failed scrape leaves the previous corpus in place.
func (s *NewsStore) ReplaceSource(ctx context.Context, sourceLabel string, items []scrape.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin replace source: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM news_items WHERE source ILIKE '%' || $1 || '%'`, sourceLabel); err != nil {
		return 0, fmt.Errorf("delete source batch: %w", err)
	}

	const insert = `
INSERT INTO news_items (title_np, title_en, body_np, body_en, source, publish_date)
VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range items {
		if _, err := tx.Exec(ctx, insert,
			item.TitleNP,
			item.TitleEN,
			item.BodyNP,
			item.BodyEN,
			item.Source,
			item.PublishDate,
		); err != nil {
			return 0, fmt.Errorf("insert news item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit replace source: %w", err)
	}
	return len(items), nil
}

// List returns all stored items, newest first.
func (s *NewsStore) List(ctx context.Context) ([]scrape.NewsItem, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, title_np, title_en, body_np, body_en, source, publish_date
FROM news_items
ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query news items: %w", err)
	}
	defer rows.Close()
	return scanNews(rows)
}

func scanNews(rows pgx.Rows) ([]scrape.NewsItem, error) {
	var out []scrape.NewsItem
	for rows.Next() {
		var item scrape.NewsItem
		if err := rows.Scan(
			&item.ID,
			&item.TitleNP,
			&item.TitleEN,
			&item.BodyNP,
			&item.BodyEN,
			&item.Source,
			&item.PublishDate,
		); err != nil {
			return nil, fmt.Errorf("scan news row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news rows: %w", err)
	}
	return out, nil
}
