package service

import (
	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/store"
)

// StockService answers catalog queries.
type StockService struct {
	stocks *store.StockStore
}

// NewStockService creates a new StockService.
func NewStockService(stocks *store.StockStore) *StockService {
	return &StockService{stocks: stocks}
}

// GetStock returns a catalog entry by ID.
func (s *StockService) GetStock(id domain.StockID) (*domain.Stock, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Message: "stock_id must be a positive integer"}
	}
	return s.stocks.Get(id)
}

// ListStocks returns the whole catalog in ascending ID order.
func (s *StockService) ListStocks() []*domain.Stock {
	return s.stocks.List()
}
