package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/krishilink/agrimarket-crawler/internal/scrape"
)

// PriceStore persists daily price snapshots in Postgres.
type PriceStore struct {
	db DB
}

// NewPriceStore constructs a PriceStore on top of an existing pool.
func NewPriceStore(db DB) (*PriceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &PriceStore{db: db}, nil
}

// ReplaceDay deletes all rows for the given calendar day and inserts the
// new batch inside one transaction, so repeated same-day runs never
// accumulate duplicates. An empty batch is a no-op: a failed scrape must
// not wipe the previous snapshot.
func (s *PriceStore) ReplaceDay(ctx context.Context, day time.Time, records []scrape.PriceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin replace day: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM daily_prices WHERE effective_date = $1`, day); err != nil {
		return 0, fmt.Errorf("delete day snapshot: %w", err)
	}

	const insert = `
INSERT INTO daily_prices (commodity_np, min_price, max_price, avg_price, effective_date)
VALUES ($1, $2, $3, $4, $5)`
	for _, rec := range records {
		if _, err := tx.Exec(ctx, insert,
			rec.CommodityNP,
			rec.MinPrice,
			rec.MaxPrice,
			rec.AvgPrice,
			rec.EffectiveDate,
		); err != nil {
			return 0, fmt.Errorf("insert price row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit replace day: %w", err)
	}
	return len(records), nil
}

// LatestPrices returns all records whose effective date equals the given
// day.
func (s *PriceStore) LatestPrices(ctx context.Context, day time.Time) ([]scrape.PriceRecord, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, commodity_np, min_price, max_price, avg_price, effective_date
FROM daily_prices
WHERE effective_date = $1
ORDER BY commodity_np`, day)
	if err != nil {
		return nil, fmt.Errorf("query latest prices: %w", err)
	}
	defer rows.Close()
	return scanPrices(rows)
}

// WeeklyTrend returns up to the 7 most recent records for a commodity,
// newest first.
func (s *PriceStore) WeeklyTrend(ctx context.Context, commodityNP string) ([]scrape.PriceRecord, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, commodity_np, min_price, max_price, avg_price, effective_date
FROM daily_prices
WHERE commodity_np = $1
ORDER BY effective_date DESC
LIMIT 7`, commodityNP)
	if err != nil {
		return nil, fmt.Errorf("query weekly trend: %w", err)
	}
	defer rows.Close()
	return scanPrices(rows)
}

func scanPrices(rows pgx.Rows) ([]scrape.PriceRecord, error) {
	var out []scrape.PriceRecord
	for rows.Next() {
		var rec scrape.PriceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CommodityNP,
			&rec.MinPrice,
			&rec.MaxPrice,
			&rec.AvgPrice,
			&rec.EffectiveDate,
		); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}
	return out, nil
}
