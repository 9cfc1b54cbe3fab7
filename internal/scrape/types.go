// Package scrape defines core types shared across the scraping subsystems.
package scrape

import (
	"context"
	"net/http"
	"time"
)

// PriceRecord is one commodity row from the daily market price table.
// CommodityNP keeps the source-language glyphs verbatim.
type PriceRecord struct {
	ID            int64     `json:"id,omitempty"`
	CommodityNP   string    `json:"commodity_np"`
	MinPrice      float64   `json:"min"`
	MaxPrice      float64   `json:"max"`
	AvgPrice      float64   `json:"avg"`
	EffectiveDate time.Time `json:"date"`
}

// NewsItem is a bilingual news article captured from a portal.
type NewsItem struct {
	ID          int64  `json:"id,omitempty"`
	TitleNP     string `json:"title_np"`
	TitleEN     string `json:"title_en"`
	BodyNP      string `json:"description_np"`
	BodyEN      string `json:"description_en"`
	Source      string `json:"source"`
	PublishDate string `json:"date"`
}

// Page is the result of fetching a URL, rendered or not.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Fetcher retrieves a page as static HTML without executing scripts.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Renderer drives a headless browser and returns the visible body text
// of a page after client-side rendering has completed.
type Renderer interface {
	RenderText(ctx context.Context, rawURL string) (string, error)
}

// Translator converts text into the target language, falling back to the
// source text on upstream failure.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) string
}

// Clock abstracts time.Now for date stamping.
type Clock interface {
	Now() time.Time
}

// PriceStore persists and reads daily price snapshots.
type PriceStore interface {
	// ReplaceDay swaps the stored snapshot for the given calendar day.
	// It must not delete anything when records is empty.
	ReplaceDay(ctx context.Context, day time.Time, records []PriceRecord) (int, error)
	LatestPrices(ctx context.Context, day time.Time) ([]PriceRecord, error)
	WeeklyTrend(ctx context.Context, commodityNP string) ([]PriceRecord, error)
}

// NewsStore persists and reads news batches keyed by source label.
type NewsStore interface {
	// ReplaceSource swaps the stored batch for the given source label.
	// It must not delete anything when items is empty.
	ReplaceSource(ctx context.Context, sourceLabel string, items []NewsItem) (int, error)
	List(ctx context.Context) ([]NewsItem, error)
}
