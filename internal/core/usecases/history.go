package usecases

import (
	"sync"
	"time"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
)

// historyCap bounds the number of recent searches kept per session.
const historyCap = 10

// SearchHistory keeps an ordered, deduplicated, bounded list of past
// searches. Newest entries come first. It lives for one session only and is
// never persisted.
type SearchHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	now     func() time.Time
}

// NewSearchHistory creates an empty history. now may be nil, in which case
// time.Now is used.
func NewSearchHistory(now func() time.Time) *SearchHistory {
	if now == nil {
		now = time.Now
	}
	return &SearchHistory{now: now}
}

// Record adds a (from, to) pair. A pair already present anywhere in the list
// is a no-op: the existing entry keeps its place and timestamp. New pairs are
// prepended and the list truncated to the cap; anything pushed past it is
// gone for good.
func (h *SearchHistory) Record(fromLabel, toLabel string) []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.entries {
		if e.From == fromLabel && e.To == toLabel {
			return h.snapshotLocked()
		}
	}

	entry := domain.HistoryEntry{
		From:      fromLabel,
		To:        toLabel,
		Timestamp: h.now().Format("02/01/2006, 15:04:05"),
	}
	h.entries = append([]domain.HistoryEntry{entry}, h.entries...)
	if len(h.entries) > historyCap {
		h.entries = h.entries[:historyCap]
	}
	return h.snapshotLocked()
}

// Entries returns a copy of the current list, newest first.
func (h *SearchHistory) Entries() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Clear empties the history.
func (h *SearchHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

func (h *SearchHistory) snapshotLocked() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
