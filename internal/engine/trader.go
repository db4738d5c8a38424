package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/store"
)

// StockValue is the valuation of a single holding.
type StockValue struct {
	StockID     domain.StockID
	Description string
	Quantity    decimal.Decimal
	Value       decimal.Decimal
}

// Portfolio is the valuation of every holding of a user, ordered by
// ascending stock id.
type Portfolio struct {
	UserID   domain.UserID
	Balance  decimal.Decimal
	Holdings []StockValue
	Total    decimal.Decimal
	Report   []string
}

// Trader executes buy and sell trades against the catalog and the user
// ledger, and values portfolios. It holds no state of its own.
type Trader struct {
	stocks *store.StockStore
	users  *store.UserStore
	trades *store.TradeStore
}

// NewTrader creates a new Trader with the given dependencies.
func NewTrader(stocks *store.StockStore, users *store.UserStore, trades *store.TradeStore) *Trader {
	return &Trader{
		stocks: stocks,
		users:  users,
		trades: trades,
	}
}

// Buy moves quantity units of a stock into the user's holdings and debits
// price × quantity from the balance. Either both sides apply or neither.
//
// The per-user lock is held from validation through the journal append.
func (t *Trader) Buy(userID domain.UserID, stockID domain.StockID, quantity decimal.Decimal) (*domain.Trade, error) {
	stock, err := t.stocks.Get(stockID)
	if err != nil {
		return nil, err
	}
	user, err := t.users.Get(userID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckAmount("quantity", quantity); err != nil {
		return nil, err
	}

	user.Mu.Lock()
	defer user.Mu.Unlock()

	if quantity.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	cost := stock.Value(quantity)
	if cost.GreaterThan(user.Balance()) {
		return nil, domain.ErrInsufficientBalance
	}

	if err := user.AdjustHoldingQuantity(stock.ID, quantity); err != nil {
		return nil, err
	}
	if err := user.AdjustBalance(cost.Neg()); err != nil {
		if rbErr := user.AdjustHoldingQuantity(stock.ID, quantity.Neg()); rbErr != nil {
			return nil, fmt.Errorf("roll back holding of stock %d: %w", stock.ID, errors.Join(err, rbErr))
		}
		return nil, err
	}

	return t.record(user, stock, domain.TradeSideBuy, quantity, cost), nil
}

// Sell moves quantity units of a stock out of the user's holdings and
// credits price × quantity to the balance. Holdings are checked before
// anything is mutated.
func (t *Trader) Sell(userID domain.UserID, stockID domain.StockID, quantity decimal.Decimal) (*domain.Trade, error) {
	stock, err := t.stocks.Get(stockID)
	if err != nil {
		return nil, err
	}
	user, err := t.users.Get(userID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckAmount("quantity", quantity); err != nil {
		return nil, err
	}

	user.Mu.Lock()
	defer user.Mu.Unlock()

	if quantity.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	if user.HoldingQuantity(stock.ID).LessThan(quantity) {
		return nil, domain.ErrInsufficientHoldings
	}
	proceeds := stock.Value(quantity)

	if err := user.AdjustHoldingQuantity(stock.ID, quantity.Neg()); err != nil {
		return nil, err
	}
	if err := user.AdjustBalance(proceeds); err != nil {
		if rbErr := user.AdjustHoldingQuantity(stock.ID, quantity); rbErr != nil {
			return nil, fmt.Errorf("roll back holding of stock %d: %w", stock.ID, errors.Join(err, rbErr))
		}
		return nil, err
	}

	return t.record(user, stock, domain.TradeSideSell, quantity, proceeds), nil
}

// record builds the journal entry for an applied trade and appends it.
// The caller holds user.Mu.
func (t *Trader) record(user *domain.User, stock *domain.Stock, side domain.TradeSide, quantity, amount decimal.Decimal) *domain.Trade {
	trade := &domain.Trade{
		TradeID:      uuid.New().String(),
		UserID:       user.ID,
		StockID:      stock.ID,
		Side:         side,
		Quantity:     quantity,
		Price:        stock.Price,
		Amount:       amount,
		BalanceAfter: user.Balance(),
		HoldingAfter: user.HoldingQuantity(stock.ID),
		ExecutedAt:   time.Now(),
	}
	t.trades.Append(trade)
	return trade
}

// StockValue returns the quantity the user holds of a stock, its value at
// the catalog price, and the stock description.
func (t *Trader) StockValue(userID domain.UserID, stockID domain.StockID) (*StockValue, error) {
	user, err := t.users.Get(userID)
	if err != nil {
		return nil, err
	}
	stock, err := t.stocks.Get(stockID)
	if err != nil {
		return nil, err
	}

	user.Mu.Lock()
	quantity := user.HoldingQuantity(stock.ID)
	user.Mu.Unlock()

	return valueOf(stock, quantity), nil
}

// PortfolioTotal values every holding of the user in ascending stock id
// order and sums them. Each holding yields one report line of the form
// "<description> | <quantity> units with total value: <value>".
func (t *Trader) PortfolioTotal(userID domain.UserID) (*Portfolio, error) {
	user, err := t.users.Get(userID)
	if err != nil {
		return nil, err
	}

	user.Mu.Lock()
	holdings := user.Holdings()
	balance := user.Balance()
	user.Mu.Unlock()

	p := &Portfolio{
		UserID:   user.ID,
		Balance:  balance,
		Holdings: make([]StockValue, 0, len(holdings)),
		Total:    decimal.Zero,
		Report:   make([]string, 0, len(holdings)),
	}
	for _, h := range holdings {
		stock, err := t.stocks.Get(h.StockID)
		if err != nil {
			return nil, fmt.Errorf("value holding of stock %d: %w", h.StockID, err)
		}
		v := valueOf(stock, h.Quantity)
		p.Holdings = append(p.Holdings, *v)
		p.Total = p.Total.Add(v.Value)
		p.Report = append(p.Report, fmt.Sprintf("%s | %s units with total value: %s",
			v.Description, v.Quantity.String(), v.Value.String()))
	}
	return p, nil
}

func valueOf(stock *domain.Stock, quantity decimal.Decimal) *StockValue {
	return &StockValue{
		StockID:     stock.ID,
		Description: stock.String(),
		Quantity:    quantity,
		Value:       stock.Value(quantity),
	}
}
