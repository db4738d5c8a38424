package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/store"
)

// RegisterUserRequest represents the input for user registration.
type RegisterUserRequest struct {
	UserID          domain.UserID
	InitialBalance  decimal.Decimal
	InitialHoldings []HoldingInput
}

// HoldingInput represents a single holding in a registration request.
type HoldingInput struct {
	StockID  domain.StockID
	Quantity decimal.Decimal
}

// UserView is a consistent snapshot of a user's ledger.
type UserView struct {
	UserID    domain.UserID
	Balance   decimal.Decimal
	Holdings  []domain.Holding // ascending stock id
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserService handles user registration and balance queries.
type UserService struct {
	users  *store.UserStore
	stocks *store.StockStore
}

// NewUserService creates a new UserService.
func NewUserService(users *store.UserStore, stocks *store.StockStore) *UserService {
	return &UserService{
		users:  users,
		stocks: stocks,
	}
}

// Register validates the request and creates a user with its starting
// balance and holdings.
func (s *UserService) Register(req RegisterUserRequest) (*domain.User, error) {
	if req.UserID <= 0 {
		return nil, &domain.ValidationError{Message: "user_id must be a positive integer"}
	}
	if req.InitialBalance.IsNegative() {
		return nil, &domain.ValidationError{Message: "initial_balance must be >= 0"}
	}
	if err := domain.CheckAmount("initial_balance", req.InitialBalance); err != nil {
		return nil, err
	}

	seen := make(map[domain.StockID]bool, len(req.InitialHoldings))
	for _, h := range req.InitialHoldings {
		if _, err := s.stocks.Get(h.StockID); err != nil {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("holding references unknown stock_id %d", h.StockID),
			}
		}
		if !h.Quantity.IsPositive() {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("holding quantity must be > 0 for stock_id %d", h.StockID),
			}
		}
		if err := domain.CheckAmount(fmt.Sprintf("holding quantity for stock_id %d", h.StockID), h.Quantity); err != nil {
			return nil, err
		}
		if seen[h.StockID] {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("duplicate stock_id in initial_holdings: %d", h.StockID),
			}
		}
		seen[h.StockID] = true
	}

	user := domain.NewUser(req.UserID, req.InitialBalance)
	for _, h := range req.InitialHoldings {
		if err := user.AdjustHoldingQuantity(h.StockID, h.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns a snapshot of the user's balance and holdings.
func (s *UserService) GetUser(id domain.UserID) (*UserView, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Message: "user_id must be a positive integer"}
	}
	user, err := s.users.Get(id)
	if err != nil {
		return nil, err
	}

	user.Mu.Lock()
	defer user.Mu.Unlock()

	return &UserView{
		UserID:    user.ID,
		Balance:   user.Balance(),
		Holdings:  user.Holdings(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}
