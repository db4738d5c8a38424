package store

import (
	"sync"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/google/btree"
)

func stockLess(a, b *domain.Stock) bool {
	return a.ID < b.ID
}

// StockStore is the stock catalog: a thread-safe in-memory store of stocks
// ordered by stock id. Stocks are only added during seeding and are never
// mutated afterwards.
type StockStore struct {
	mu     sync.RWMutex
	stocks *btree.BTreeG[*domain.Stock]
}

// NewStockStore creates an empty StockStore.
func NewStockStore() *StockStore {
	const degree = 16
	return &StockStore{
		stocks: btree.NewG[*domain.Stock](degree, stockLess),
	}
}

// Create adds a stock to the catalog. It returns
// domain.ErrStockAlreadyExists if a stock with the same ID exists.
func (s *StockStore) Create(st *domain.Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stocks.Has(st) {
		return domain.ErrStockAlreadyExists
	}
	s.stocks.ReplaceOrInsert(st)
	return nil
}

// Get retrieves a stock by ID. It returns
// domain.ErrStockNotFound if the stock does not exist.
func (s *StockStore) Get(id domain.StockID) (*domain.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stocks.Get(&domain.Stock{ID: id})
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	return st, nil
}

// List returns every stock in ascending ID order.
func (s *StockStore) List() []*domain.Stock {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Stock, 0, s.stocks.Len())
	s.stocks.Ascend(func(st *domain.Stock) bool {
		result = append(result, st)
		return true
	})
	return result
}

// Len returns the number of stocks in the catalog.
func (s *StockStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stocks.Len()
}
