// Package api exposes the HTTP interface for the market data service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krishilink/agrimarket-crawler/internal/metrics"
	"github.com/krishilink/agrimarket-crawler/internal/scrape"
)

// PriceScraper triggers the daily price pipeline.
type PriceScraper interface {
	ScrapeDailyPrices(ctx context.Context) (int, error)
	Today() time.Time
}

// NewsScraper produces a fresh news batch without persisting it.
type NewsScraper interface {
	Scrape(ctx context.Context) ([]scrape.NewsItem, error)
}

// Config carries the handler knobs the server needs.
type Config struct {
	NewsSourceLabel string
	ReadTimeout     time.Duration
	ScrapeTimeout   time.Duration
}

// Server wires HTTP handlers to the scrapers and stores.
type Server struct {
	router     chi.Router
	prices     PriceScraper
	news       NewsScraper
	priceStore scrape.PriceStore
	newsStore  scrape.NewsStore
	cfg        Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	prices PriceScraper,
	news NewsScraper,
	priceStore scrape.PriceStore,
	newsStore scrape.NewsStore,
	cfg Config,
	logger *zap.Logger,
) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.ScrapeTimeout <= 0 {
		// News runs visit up to a dozen rendered pages; give them room.
		cfg.ScrapeTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		prices:     prices,
		news:       news,
		priceStore: priceStore,
		newsStore:  newsStore,
		cfg:        cfg,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(timeoutMiddleware(cfg.ScrapeTimeout))
			r.Post("/prices/scrape", s.scrapePrices)
			r.Post("/news/scrape/moald", s.scrapeNews)
		})
		r.Group(func(r chi.Router) {
			r.Use(timeoutMiddleware(cfg.ReadTimeout))
			r.Get("/prices/today", s.todayPrices)
			r.Get("/prices/trend/weekly", s.weeklyTrend)
			r.Get("/news", s.listNews)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// scrapePrices runs the market price pipeline synchronously.
func (s *Server) scrapePrices(w http.ResponseWriter, r *http.Request) {
	count, err := s.prices.ScrapeDailyPrices(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Prices scraped successfully",
		"count":   count,
	})
}

func (s *Server) todayPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.priceStore.LatestPrices(r.Context(), s.prices.Today())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if prices == nil {
		prices = []scrape.PriceRecord{}
	}
	s.writeJSON(w, http.StatusOK, prices)
}

func (s *Server) weeklyTrend(w http.ResponseWriter, r *http.Request) {
	commodity := r.URL.Query().Get("commodity_np")
	if commodity == "" {
		s.writeError(w, http.StatusBadRequest, "commodity_np is required")
		return
	}
	trend, err := s.priceStore.WeeklyTrend(r.Context(), commodity)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if trend == nil {
		trend = []scrape.PriceRecord{}
	}
	s.writeJSON(w, http.StatusOK, trend)
}

// scrapeNews runs the news pipeline synchronously and replaces the
// stored batch for the configured source.
func (s *Server) scrapeNews(w http.ResponseWriter, r *http.Request) {
	items, err := s.news.Scrape(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(items) == 0 {
		s.writeError(w, http.StatusNotFound, "no news found")
		return
	}
	count, err := s.newsStore.ReplaceSource(r.Context(), s.cfg.NewsSourceLabel, items)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "News scraped and saved",
		"count":   count,
	})
}

// newsResponse is the client-facing projection of a NewsItem in one
// language.
type newsResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Date        string `json:"date"`
}

// listNews returns stored items projected to the requested language.
// Anything other than lang=NP gets the translated text.
func (s *Server) listNews(w http.ResponseWriter, r *http.Request) {
	items, err := s.newsStore.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	useSource := r.URL.Query().Get("lang") == "NP"
	out := make([]newsResponse, 0, len(items))
	for _, item := range items {
		resp := newsResponse{
			ID:     item.ID,
			Source: item.Source,
			Date:   item.PublishDate,
		}
		if useSource {
			resp.Title = item.TitleNP
			resp.Description = item.BodyNP
		} else {
			resp.Title = item.TitleEN
			resp.Description = item.BodyEN
		}
		out = append(out, resp)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, duration)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", duration.Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
