package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide indicates whether a trade bought or sold stock.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Trade is the journal record of an applied buy or sell.
type Trade struct {
	TradeID      string
	UserID       UserID
	StockID      StockID
	Side         TradeSide
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	Amount       decimal.Decimal // cost of a buy, proceeds of a sell
	BalanceAfter decimal.Decimal
	HoldingAfter decimal.Decimal
	ExecutedAt   time.Time
}
