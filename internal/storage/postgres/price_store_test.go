package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/krishilink/agrimarket-crawler/internal/scrape"
)

func day(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kathmandu")
	require.NoError(t, err)
	return time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
}

func TestReplaceDayDeletesThenInserts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPriceStore(mock)
	require.NoError(t, err)

	today := day(t)
	records := []scrape.PriceRecord{
		{CommodityNP: "आलु", MinPrice: 40, MaxPrice: 50, AvgPrice: 45, EffectiveDate: today},
		{CommodityNP: "धान", MinPrice: 2500, MaxPrice: 2700, AvgPrice: 2600, EffectiveDate: today},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_prices").
		WithArgs(today).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec("INSERT INTO daily_prices").
		WithArgs("आलु", 40.0, 50.0, 45.0, today).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO daily_prices").
		WithArgs("धान", 2500.0, 2700.0, 2600.0, today).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	count, err := store.ReplaceDay(context.Background(), today, records)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceDayEmptyBatchIsNoOp(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPriceStore(mock)
	require.NoError(t, err)

	count, err := store.ReplaceDay(context.Background(), day(t), nil)
	require.NoError(t, err)
	require.Zero(t, count)
	// No Begin/Delete expected: an empty scrape must not wipe prior data.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceDayRollsBackOnInsertFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPriceStore(mock)
	require.NoError(t, err)

	today := day(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_prices").
		WithArgs(today).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO daily_prices").
		WithArgs("आलु", 40.0, 50.0, 45.0, today).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = store.ReplaceDay(context.Background(), today, []scrape.PriceRecord{
		{CommodityNP: "आलु", MinPrice: 40, MaxPrice: 50, AvgPrice: 45, EffectiveDate: today},
	})
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestPrices(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPriceStore(mock)
	require.NoError(t, err)

	today := day(t)
	rows := pgxmock.NewRows([]string{"id", "commodity_np", "min_price", "max_price", "avg_price", "effective_date"}).
		AddRow(int64(1), "आलु", 40.0, 50.0, 45.0, today).
		AddRow(int64(2), "धान", 2500.0, 2700.0, 2600.0, today)
	mock.ExpectQuery("SELECT (.+) FROM daily_prices").
		WithArgs(today).
		WillReturnRows(rows)

	got, err := store.LatestPrices(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "आलु", got[0].CommodityNP)
	require.Equal(t, 45.0, got[0].AvgPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyTrend(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPriceStore(mock)
	require.NoError(t, err)

	today := day(t)
	rows := pgxmock.NewRows([]string{"id", "commodity_np", "min_price", "max_price", "avg_price", "effective_date"})
	for i := 0; i < 7; i++ {
		rows.AddRow(int64(i+1), "धान", 2500.0, 2700.0, 2600.0, today.AddDate(0, 0, -i))
	}
	mock.ExpectQuery("SELECT (.+) FROM daily_prices").
		WithArgs("धान").
		WillReturnRows(rows)

	got, err := store.WeeklyTrend(context.Background(), "धान")
	require.NoError(t, err)
	require.Len(t, got, 7)
	for i := 1; i < len(got); i++ {
		require.True(t, got[i].EffectiveDate.Before(got[i-1].EffectiveDate), "trend ordered newest first")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
