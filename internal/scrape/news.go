package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/krishilink/agrimarket-crawler/internal/metrics"
	"github.com/krishilink/agrimarket-crawler/internal/normalize"
)

// NewsConfig controls the news portal scraper.
type NewsConfig struct {
	BaseURL        string
	ContentPath    string // href prefix identifying article pages
	SourceLabel    string
	TargetLang     string
	MaxArticles    int
	MinTitleLength int
	MinBodyLength  int
}

// newsCandidate is a discovered article link before rendering.
type newsCandidate struct {
	titleNP string
	url     string
}

// NewsScraper discovers article links on a portal homepage and drives a
// headless browser per article, because article bodies are rendered
// client-side. It returns the scraped batch; persisting it is the
// caller's job.
type NewsScraper struct {
	fetcher    Fetcher
	renderer   Renderer
	translator Translator
	clock      Clock
	cfg        NewsConfig
	logger     *zap.Logger
}

// NewNewsScraper constructs a NewsScraper with defaults matching the
// MoALD portal.
func NewNewsScraper(fetcher Fetcher, renderer Renderer, translator Translator, clock Clock, cfg NewsConfig, logger *zap.Logger) *NewsScraper {
	if cfg.ContentPath == "" {
		cfg.ContentPath = "/content/"
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = "en"
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 12
	}
	if cfg.MinTitleLength <= 0 {
		cfg.MinTitleLength = 15
	}
	if cfg.MinBodyLength <= 0 {
		cfg.MinBodyLength = 80
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsScraper{
		fetcher:    fetcher,
		renderer:   renderer,
		translator: translator,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Scrape fetches the homepage, renders up to MaxArticles candidate pages
// sequentially, and returns the valid bilingual items. One candidate's
// failure never aborts the batch; a homepage failure aborts the run with
// no items so the caller leaves prior data in place.
func (s *NewsScraper) Scrape(ctx context.Context) ([]NewsItem, error) {
	start := s.clock.Now()

	page, err := s.fetcher.Fetch(ctx, s.cfg.BaseURL)
	if err != nil {
		metrics.ObserveScrapeRun("moald", "failed", 0, s.clock.Now().Sub(start))
		return nil, fmt.Errorf("fetch news homepage: %w", err)
	}

	candidates, err := s.discoverCandidates(page.Body)
	if err != nil {
		metrics.ObserveScrapeRun("moald", "failed", 0, s.clock.Now().Sub(start))
		return nil, err
	}
	s.logger.Info("news candidates discovered", zap.Int("count", len(candidates)))

	if len(candidates) > s.cfg.MaxArticles {
		candidates = candidates[:s.cfg.MaxArticles]
	}

	captureDate := s.clock.Now().Format("2006-01-02")
	var items []NewsItem
	for _, cand := range candidates {
		item, ok := s.scrapeArticle(ctx, cand, captureDate)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	metrics.ObserveScrapeRun("moald", "success", len(items), s.clock.Now().Sub(start))
	s.logger.Info("news scrape finished", zap.Int("count", len(items)))
	return items, nil
}

// discoverCandidates finds anchors pointing at content pages whose link
// text is long enough to be a headline rather than navigation chrome.
func (s *NewsScraper) discoverCandidates(body []byte) ([]newsCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse news homepage: %w", err)
	}

	var candidates []newsCandidate
	doc.Find("a[href^='" + s.cfg.ContentPath + "']").Each(func(_ int, a *goquery.Selection) {
		title := normalize.Clean(a.Text())
		href, _ := a.Attr("href")
		if len([]rune(title)) <= s.cfg.MinTitleLength || href == "" {
			return
		}
		candidates = append(candidates, newsCandidate{
			titleNP: title,
			url:     strings.TrimSuffix(s.cfg.BaseURL, "/") + href,
		})
	})
	return candidates, nil
}

// scrapeArticle renders one candidate and builds the bilingual item.
// Navigation failures and below-threshold bodies drop the candidate.
func (s *NewsScraper) scrapeArticle(ctx context.Context, cand newsCandidate, captureDate string) (NewsItem, bool) {
	text, err := s.renderer.RenderText(ctx, cand.url)
	if err != nil {
		metrics.ObserveCandidate("moald", "failed")
		s.logger.Warn("failed to scrape article", zap.String("url", cand.url), zap.Error(err))
		return NewsItem{}, false
	}

	cleaned := normalize.Clean(text)
	if len([]rune(cleaned)) < s.cfg.MinBodyLength {
		metrics.ObserveCandidate("moald", "skipped")
		s.logger.Warn("skipped article with empty rendered text", zap.String("url", cand.url))
		return NewsItem{}, false
	}

	titleEN := s.translator.Translate(ctx, cand.titleNP, s.cfg.TargetLang)
	bodyEN := s.translator.Translate(ctx, cleaned, s.cfg.TargetLang)

	metrics.ObserveCandidate("moald", "kept")
	s.logger.Info("scraped article", zap.String("title", cand.titleNP))
	return NewsItem{
		TitleNP:     cand.titleNP,
		TitleEN:     titleEN,
		BodyNP:      cleaned,
		BodyEN:      bodyEN,
		Source:      s.cfg.SourceLabel,
		PublishDate: captureDate,
	}, true
}
