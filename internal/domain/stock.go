package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StockID identifies a tradable instrument in the catalog.
type StockID int64

// Stock is a catalog entry. Price is fixed at creation; trading never
// mutates a Stock.
type Stock struct {
	ID    StockID
	Name  string
	Price decimal.Decimal
}

// NewStock validates the attributes and returns a catalog entry.
func NewStock(id StockID, name string, price decimal.Decimal) (*Stock, error) {
	if id <= 0 {
		return nil, &ValidationError{Message: "stock_id must be a positive integer"}
	}
	if name == "" {
		return nil, &ValidationError{Message: fmt.Sprintf("stock %d: name must not be empty", id)}
	}
	if price.IsNegative() {
		return nil, &ValidationError{Message: fmt.Sprintf("stock %d: price must be >= 0", id)}
	}
	if err := CheckAmount(fmt.Sprintf("stock %d: price", id), price); err != nil {
		return nil, err
	}
	return &Stock{ID: id, Name: name, Price: price}, nil
}

// String returns the human-readable description "<name> : $<price>".
func (s *Stock) String() string {
	return s.Name + " : $" + s.Price.String()
}

// Value returns the market value of quantity units at the catalog price.
func (s *Stock) Value(quantity decimal.Decimal) decimal.Decimal {
	return s.Price.Mul(quantity)
}
