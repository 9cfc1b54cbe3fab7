package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/krishilink/agrimarket-crawler/internal/scrape"
)

func TestPriceStoreReplaceDayIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewPriceStore()
	ctx := context.Background()
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	batch := []scrape.PriceRecord{
		{CommodityNP: "आलु", MinPrice: 40, MaxPrice: 50, AvgPrice: 45, EffectiveDate: today},
		{CommodityNP: "धान", MinPrice: 2500, MaxPrice: 2700, AvgPrice: 2600, EffectiveDate: today},
	}

	for i := 0; i < 2; i++ {
		count, err := store.ReplaceDay(ctx, today, batch)
		require.NoError(t, err)
		require.Equal(t, 2, count)
	}

	got, err := store.LatestPrices(ctx, today)
	require.NoError(t, err)
	require.Len(t, got, 2, "second run must replace the first, not accumulate")
}

func TestPriceStoreEmptyBatchKeepsPriorDay(t *testing.T) {
	t.Parallel()

	store := NewPriceStore()
	ctx := context.Background()
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	_, err := store.ReplaceDay(ctx, today, []scrape.PriceRecord{
		{CommodityNP: "आलु", MinPrice: 40, MaxPrice: 50, AvgPrice: 45, EffectiveDate: today},
	})
	require.NoError(t, err)

	count, err := store.ReplaceDay(ctx, today, nil)
	require.NoError(t, err)
	require.Zero(t, count)

	got, err := store.LatestPrices(ctx, today)
	require.NoError(t, err)
	require.Len(t, got, 1, "empty batch must not wipe the stored snapshot")
}

func TestPriceStoreWeeklyTrend(t *testing.T) {
	t.Parallel()

	store := NewPriceStore()
	ctx := context.Background()

	// Ten daily runs; the trend must cap at the 7 newest.
	for i := 0; i < 10; i++ {
		d := time.Date(2026, 8, 22+i, 0, 0, 0, 0, time.UTC)
		_, err := store.ReplaceDay(ctx, d, []scrape.PriceRecord{
			{CommodityNP: "धान", MinPrice: 2500, MaxPrice: 2700, AvgPrice: 2600, EffectiveDate: d},
		})
		require.NoError(t, err)
	}

	trend, err := store.WeeklyTrend(ctx, "धान")
	require.NoError(t, err)
	require.Len(t, trend, 7)
	for i := 1; i < len(trend); i++ {
		require.True(t, trend[i].EffectiveDate.Before(trend[i-1].EffectiveDate))
	}
	require.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), trend[0].EffectiveDate)
}

func TestNewsStoreReplaceSource(t *testing.T) {
	t.Parallel()

	store := NewNewsStore()
	ctx := context.Background()
	label := "Ministry of Agriculture & Livestock Development, Nepal"

	first := []scrape.NewsItem{
		{TitleNP: "पुरानो", TitleEN: "old", BodyNP: "x", BodyEN: "x", Source: label, PublishDate: "2026-08-30"},
		{TitleNP: "पुरानो दुई", TitleEN: "old two", BodyNP: "x", BodyEN: "x", Source: label, PublishDate: "2026-08-30"},
	}
	_, err := store.ReplaceSource(ctx, label, first)
	require.NoError(t, err)

	second := []scrape.NewsItem{
		{TitleNP: "नयाँ", TitleEN: "new", BodyNP: "y", BodyEN: "y", Source: label, PublishDate: "2026-08-31"},
	}
	count, err := store.ReplaceSource(ctx, label, second)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "prior batch for the source fully replaced")
	require.Equal(t, "new", got[0].TitleEN)
}

func TestNewsStoreEmptyBatchKeepsPriorCorpus(t *testing.T) {
	t.Parallel()

	store := NewNewsStore()
	ctx := context.Background()
	label := "Ministry of Agriculture & Livestock Development, Nepal"

	_, err := store.ReplaceSource(ctx, label, []scrape.NewsItem{
		{TitleNP: "सूचना", TitleEN: "notice", BodyNP: "x", BodyEN: "x", Source: label, PublishDate: "2026-08-30"},
	})
	require.NoError(t, err)

	count, err := store.ReplaceSource(ctx, label, nil)
	require.NoError(t, err)
	require.Zero(t, count)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
