package store

import (
	"sync"

	"github.com/efreitasn/miniledger/internal/domain"
)

// TradeStore is a thread-safe in-memory trade journal, keyed by user id.
// Trades are append-only and chronological.
type TradeStore struct {
	mu     sync.RWMutex
	trades map[domain.UserID][]*domain.Trade // user_id → trades (chronological)
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		trades: make(map[domain.UserID][]*domain.Trade),
	}
}

// Append adds a trade to its user's chronological list.
func (s *TradeStore) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[t.UserID] = append(s.trades[t.UserID], t)
}

// ListByUser returns trades for a user in reverse chronological order
// (newest first). If side is non-nil, only trades on that side are
// included. Pagination is 1-based. Returns the trades for the requested
// page and the total count of matching trades (before pagination).
func (s *TradeStore) ListByUser(userID domain.UserID, side *domain.TradeSide, page, limit int) ([]*domain.Trade, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.trades[userID]

	// Filter by side if provided, collecting in reverse order.
	filtered := make([]*domain.Trade, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if side != nil && all[i].Side != *side {
			continue
		}
		filtered = append(filtered, all[i])
	}

	total := len(filtered)

	start := (page - 1) * limit
	if start >= total {
		return []*domain.Trade{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return filtered[start:end], total
}
