package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/krishilink/agrimarket-crawler/internal/metrics"
	"github.com/krishilink/agrimarket-crawler/internal/normalize"
)

// MarketConfig controls the daily price scraper.
type MarketConfig struct {
	URL      string
	Location *time.Location
}

// MarketScraper pulls the daily commodity price table from the market
// portal and replaces the stored snapshot for today.
type MarketScraper struct {
	fetcher Fetcher
	store   PriceStore
	clock   Clock
	cfg     MarketConfig
	logger  *zap.Logger
}

// NewMarketScraper constructs a MarketScraper.
func NewMarketScraper(fetcher Fetcher, store PriceStore, clock Clock, cfg MarketConfig, logger *zap.Logger) *MarketScraper {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketScraper{
		fetcher: fetcher,
		store:   store,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
}

// Today returns the current calendar day truncated to midnight in the
// configured market timezone.
func (s *MarketScraper) Today() time.Time {
	now := s.clock.Now().In(s.cfg.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
}

// ScrapeDailyPrices fetches the price table, parses and normalizes its
// rows, and replaces today's snapshot. Repeated runs on the same day are
// idempotent: the last run wins. It returns the number of records stored.
// Page-level failures propagate; malformed rows are skipped silently.
func (s *MarketScraper) ScrapeDailyPrices(ctx context.Context) (int, error) {
	start := s.clock.Now()

	page, err := s.fetcher.Fetch(ctx, s.cfg.URL)
	if err != nil {
		metrics.ObserveScrapeRun("kalimati", "failed", 0, s.clock.Now().Sub(start))
		return 0, fmt.Errorf("fetch market page: %w", err)
	}

	today := s.Today()
	records, err := s.parsePrices(page.Body, today)
	if err != nil {
		metrics.ObserveScrapeRun("kalimati", "failed", 0, s.clock.Now().Sub(start))
		return 0, err
	}

	count, err := s.store.ReplaceDay(ctx, today, records)
	if err != nil {
		metrics.ObserveScrapeRun("kalimati", "failed", 0, s.clock.Now().Sub(start))
		return 0, fmt.Errorf("replace day snapshot: %w", err)
	}

	metrics.ObserveScrapeRun("kalimati", "success", count, s.clock.Now().Sub(start))
	s.logger.Info("daily prices saved",
		zap.Int("count", count),
		zap.String("date", today.Format("2006-01-02")),
	)
	return count, nil
}

// parsePrices extracts rows with exactly four cells: commodity, min, max,
// avg. Rows with an empty commodity or a non-numeric minimum are dropped,
// which filters header and footer rows.
func (s *MarketScraper) parsePrices(body []byte, day time.Time) ([]PriceRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse market page: %w", err)
	}

	var records []PriceRecord
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() != 4 {
			return
		}

		commodity := normalize.Clean(cols.Eq(0).Text())
		minPrice, minErr := strconv.ParseFloat(normalize.Numeral(cols.Eq(1).Text()), 64)
		if commodity == "" || minErr != nil {
			metrics.ObserveCandidate("kalimati", "skipped")
			return
		}
		maxPrice, _ := strconv.ParseFloat(normalize.Numeral(cols.Eq(2).Text()), 64)
		avgPrice, _ := strconv.ParseFloat(normalize.Numeral(cols.Eq(3).Text()), 64)

		metrics.ObserveCandidate("kalimati", "kept")
		records = append(records, PriceRecord{
			CommodityNP:   commodity,
			MinPrice:      minPrice,
			MaxPrice:      maxPrice,
			AvgPrice:      avgPrice,
			EffectiveDate: day,
		})
	})
	return records, nil
}
