// Package memory provides in-memory store implementations for tests and
// database-less development runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/krishilink/agrimarket-crawler/internal/scrape"
)

// PriceStore keeps price snapshots in memory.
type PriceStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   []scrape.PriceRecord
}

// NewPriceStore creates an empty in-memory PriceStore.
func NewPriceStore() *PriceStore {
	return &PriceStore{nextID: 1}
}

// ReplaceDay swaps the snapshot for a calendar day. Empty batches are a
// no-op, matching the persistence contract.
func (s *PriceStore) ReplaceDay(_ context.Context, day time.Time, records []scrape.PriceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rows[:0]
	for _, r := range s.rows {
		if !sameDay(r.EffectiveDate, day) {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	for _, r := range records {
		r.ID = s.nextID
		s.nextID++
		s.rows = append(s.rows, r)
	}
	return len(records), nil
}

// LatestPrices returns records effective on the given day.
func (s *PriceStore) LatestPrices(_ context.Context, day time.Time) ([]scrape.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []scrape.PriceRecord
	for _, r := range s.rows {
		if sameDay(r.EffectiveDate, day) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommodityNP < out[j].CommodityNP })
	return out, nil
}

// WeeklyTrend returns up to the 7 most recent records for the commodity,
// newest first.
func (s *PriceStore) WeeklyTrend(_ context.Context, commodityNP string) ([]scrape.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []scrape.PriceRecord
	for _, r := range s.rows {
		if r.CommodityNP == commodityNP {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.After(out[j].EffectiveDate) })
	if len(out) > 7 {
		out = out[:7]
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// NewsStore keeps news batches in memory.
type NewsStore struct {
	mu     sync.RWMutex
	nextID int64
	items  []scrape.NewsItem
}

// NewNewsStore creates an empty in-memory NewsStore.
func NewNewsStore() *NewsStore {
	return &NewsStore{nextID: 1}
}

// ReplaceSource swaps the batch whose source matches the label. Empty
// batches are a no-op.
func (s *NewsStore) ReplaceSource(_ context.Context, sourceLabel string, items []scrape.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(sourceLabel)
	kept := s.items[:0]
	for _, it := range s.items {
		if !strings.Contains(strings.ToLower(it.Source), needle) {
			kept = append(kept, it)
		}
	}
	s.items = kept
	for _, it := range items {
		it.ID = s.nextID
		s.nextID++
		s.items = append(s.items, it)
	}
	return len(items), nil
}

// List returns all items, newest first.
func (s *NewsStore) List(_ context.Context) ([]scrape.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]scrape.NewsItem, len(s.items))
	copy(out, s.items)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
