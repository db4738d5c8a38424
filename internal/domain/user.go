package domain

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// UserID identifies an account holder.
type UserID int64

// Holding is the quantity of one stock owned by a user.
type Holding struct {
	StockID  StockID
	Quantity decimal.Decimal
}

func holdingLess(a, b Holding) bool {
	return a.StockID < b.StockID
}

// User is an account with a cash balance and stock holdings.
//
// Invariants: balance >= 0 and every present holding is > 0. A holding that
// reaches exactly zero is removed, so an absent entry means zero.
//
// The mutators and accessors do not lock. Callers hold Mu for the whole
// read-validate-apply sequence of a trade or report.
type User struct {
	ID        UserID
	CreatedAt time.Time
	UpdatedAt time.Time
	Mu        sync.Mutex // per-user lock for ledger mutations

	balance  decimal.Decimal
	holdings *btree.BTreeG[Holding] // ordered by stock id
}

// NewUser creates a user with the given starting balance and no holdings.
// Seed holdings are added with AdjustHoldingQuantity.
func NewUser(id UserID, balance decimal.Decimal) *User {
	const degree = 8
	now := time.Now()
	return &User{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		balance:   balance,
		holdings:  btree.NewG[Holding](degree, holdingLess),
	}
}

// Balance returns the current cash balance.
func (u *User) Balance() decimal.Decimal {
	return u.balance
}

// AdjustBalance adds delta to the balance. It returns ErrInsufficientBalance
// and leaves the balance unchanged if the result would be negative.
func (u *User) AdjustBalance(delta decimal.Decimal) error {
	next := u.balance.Add(delta)
	if next.IsNegative() {
		return ErrInsufficientBalance
	}
	u.balance = next
	u.UpdatedAt = time.Now()
	return nil
}

// HoldingQuantity returns the quantity held of a stock, zero if none.
func (u *User) HoldingQuantity(stockID StockID) decimal.Decimal {
	h, ok := u.holdings.Get(Holding{StockID: stockID})
	if !ok {
		return decimal.Zero
	}
	return h.Quantity
}

// AdjustHoldingQuantity adds delta to the holding of a stock. It returns
// ErrInsufficientHoldings and leaves holdings unchanged if the result would
// be negative. A result of exactly zero removes the entry.
func (u *User) AdjustHoldingQuantity(stockID StockID, delta decimal.Decimal) error {
	next := u.HoldingQuantity(stockID).Add(delta)
	switch {
	case next.IsNegative():
		return ErrInsufficientHoldings
	case next.IsZero():
		u.holdings.Delete(Holding{StockID: stockID})
	default:
		u.holdings.ReplaceOrInsert(Holding{StockID: stockID, Quantity: next})
	}
	u.UpdatedAt = time.Now()
	return nil
}

// Holdings returns a copy of the holdings in ascending stock id order.
func (u *User) Holdings() []Holding {
	result := make([]Holding, 0, u.holdings.Len())
	u.holdings.Ascend(func(h Holding) bool {
		result = append(result, h)
		return true
	})
	return result
}
