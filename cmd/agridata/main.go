// Command agridata serves agricultural market prices and ministry news
// scraped from public portals.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/krishilink/agrimarket-crawler/internal/api"
	"github.com/krishilink/agrimarket-crawler/internal/clock/system"
	"github.com/krishilink/agrimarket-crawler/internal/config"
	"github.com/krishilink/agrimarket-crawler/internal/logging"
	"github.com/krishilink/agrimarket-crawler/internal/metrics"
	"github.com/krishilink/agrimarket-crawler/internal/scheduler"
	"github.com/krishilink/agrimarket-crawler/internal/scrape"
	"github.com/krishilink/agrimarket-crawler/internal/storage/memory"
	"github.com/krishilink/agrimarket-crawler/internal/storage/postgres"
	"github.com/krishilink/agrimarket-crawler/internal/translate"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "agridata: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is harmless

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		priceStore scrape.PriceStore
		newsStore  scrape.NewsStore
		closeDB    func()
	)
	switch cfg.DB.Provider {
	case "memory":
		priceStore = memory.NewPriceStore()
		newsStore = memory.NewNewsStore()
		closeDB = func() {}
		logger.Warn("using in-memory stores, data will not survive restarts")
	default:
		pool, poolErr := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if poolErr != nil {
			return fmt.Errorf("connect database: %w", poolErr)
		}
		closeDB = pool.Close

		ps, storeErr := postgres.NewPriceStore(pool)
		if storeErr != nil {
			return storeErr
		}
		ns, storeErr := postgres.NewNewsStore(pool)
		if storeErr != nil {
			return storeErr
		}
		priceStore, newsStore = ps, ns
	}
	defer closeDB()

	clock := system.New()
	fetcher := scrape.NewCollyFetcher(scrape.FetcherConfig{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logging.Named(logger, "fetch"))

	var renderer scrape.Renderer
	chromeRenderer, err := scrape.NewChromedpRenderer(scrape.RendererConfig{
		UserAgent:   cfg.Fetch.UserAgent,
		MaxParallel: cfg.News.MaxParallel,
		NavTimeout:  cfg.NavTimeout(),
		DomainQPS:   cfg.News.DomainQPS,
	}, logging.Named(logger, "render"))
	if err != nil {
		// The price pipeline works without a browser; news scrapes will
		// fail per-article until Chrome is available.
		logger.Warn("headless renderer unavailable", zap.Error(err))
		renderer = unavailableRenderer{err: err}
	} else {
		renderer = chromeRenderer
		defer chromeRenderer.Close()
	}

	translator := translate.New(translate.Config{
		Endpoint:  cfg.Translate.Endpoint,
		ChunkSize: cfg.Translate.ChunkSize,
		Timeout:   cfg.TranslateTimeout(),
	}, nil, logging.Named(logger, "translate"))

	marketScraper := scrape.NewMarketScraper(fetcher, priceStore, clock, scrape.MarketConfig{
		URL:      cfg.Market.URL,
		Location: cfg.MarketLocation(),
	}, logging.Named(logger, "market"))
	newsScraper := scrape.NewNewsScraper(fetcher, renderer, translator, clock, scrape.NewsConfig{
		BaseURL:        cfg.News.BaseURL,
		ContentPath:    cfg.News.ContentPath,
		SourceLabel:    cfg.News.SourceLabel,
		TargetLang:     cfg.News.TargetLang,
		MaxArticles:    cfg.News.MaxArticles,
		MinTitleLength: cfg.News.MinTitleLength,
		MinBodyLength:  cfg.News.MinBodyLength,
	}, logging.Named(logger, "news"))

	sched := scheduler.New(cfg.MarketLocation(), logging.Named(logger, "scheduler"))
	if cfg.Schedule.Enabled {
		err = sched.Register(cfg.Schedule.Spec, scheduler.Job{
			Name: "daily-prices",
			Run: func(ctx context.Context) error {
				_, runErr := marketScraper.ScrapeDailyPrices(ctx)
				return runErr
			},
		})
		if err != nil {
			return err
		}
		err = sched.Register(cfg.Schedule.Spec, scheduler.Job{
			Name: "daily-news",
			Run: func(ctx context.Context) error {
				items, runErr := newsScraper.Scrape(ctx)
				if runErr != nil {
					return runErr
				}
				if len(items) == 0 {
					logger.Warn("news run produced no items, keeping previous batch")
					return nil
				}
				_, runErr = newsStore.ReplaceSource(ctx, cfg.News.SourceLabel, items)
				return runErr
			},
		})
		if err != nil {
			return err
		}
		sched.Start()
		logger.Info("scheduler started",
			zap.String("spec", cfg.Schedule.Spec),
			zap.String("timezone", cfg.Market.Timezone),
		)
	}

	server := api.NewServer(marketScraper, newsScraper, priceStore, newsStore, api.Config{
		NewsSourceLabel: cfg.News.SourceLabel,
	}, logging.Named(logger, "api"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-errCh:
		return fmt.Errorf("http server: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	logger.Info("shutdown complete")
	return nil
}

// unavailableRenderer stands in when headless Chrome could not start.
type unavailableRenderer struct {
	err error
}

func (r unavailableRenderer) RenderText(context.Context, string) (string, error) {
	return "", fmt.Errorf("renderer unavailable: %w", r.err)
}
