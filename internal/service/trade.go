package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/engine"
	"github.com/efreitasn/miniledger/internal/store"
)

// ValidTradeSides lists all valid trade side values for validation.
var ValidTradeSides = map[domain.TradeSide]bool{
	domain.TradeSideBuy:  true,
	domain.TradeSideSell: true,
}

// TradeRequest represents the input for a buy or sell.
type TradeRequest struct {
	UserID   domain.UserID
	StockID  domain.StockID
	Quantity decimal.Decimal
}

// TradeService executes trades, answers valuation queries, and lists the
// trade journal.
type TradeService struct {
	trader     *engine.Trader
	users      *store.UserStore
	trades     *store.TradeStore
	webhookSvc *WebhookService
	logger     *slog.Logger
}

// NewTradeService creates a new TradeService with the given dependencies.
// webhookSvc may be nil, in which case no notifications are sent.
func NewTradeService(
	trader *engine.Trader,
	users *store.UserStore,
	trades *store.TradeStore,
	webhookSvc *WebhookService,
	logger *slog.Logger,
) *TradeService {
	return &TradeService{
		trader:     trader,
		users:      users,
		trades:     trades,
		webhookSvc: webhookSvc,
		logger:     logger,
	}
}

// Buy validates the request and buys stock for the user.
func (s *TradeService) Buy(req TradeRequest) (*domain.Trade, error) {
	return s.execute(req, domain.TradeSideBuy)
}

// Sell validates the request and sells stock from the user's holdings.
func (s *TradeService) Sell(req TradeRequest) (*domain.Trade, error) {
	return s.execute(req, domain.TradeSideSell)
}

func (s *TradeService) execute(req TradeRequest, side domain.TradeSide) (*domain.Trade, error) {
	if err := validateIDs(req.UserID, req.StockID); err != nil {
		return nil, err
	}
	if err := domain.CheckAmount("quantity", req.Quantity); err != nil {
		return nil, err
	}

	var (
		trade *domain.Trade
		err   error
	)
	if side == domain.TradeSideBuy {
		trade, err = s.trader.Buy(req.UserID, req.StockID, req.Quantity)
	} else {
		trade, err = s.trader.Sell(req.UserID, req.StockID, req.Quantity)
	}
	if err != nil {
		if isRejection(err) {
			s.logger.Debug("trade rejected",
				slog.Int64("user_id", int64(req.UserID)),
				slog.Int64("stock_id", int64(req.StockID)),
				slog.String("side", string(side)),
				slog.String("quantity", req.Quantity.String()),
				slog.String("reason", err.Error()),
			)
			if s.webhookSvc != nil {
				s.webhookSvc.DispatchTradeRejected(req, side, err)
			}
		}
		return nil, err
	}

	s.logger.Info("trade executed",
		slog.String("trade_id", trade.TradeID),
		slog.Int64("user_id", int64(trade.UserID)),
		slog.Int64("stock_id", int64(trade.StockID)),
		slog.String("side", string(trade.Side)),
		slog.String("quantity", trade.Quantity.String()),
		slog.String("amount", trade.Amount.String()),
	)
	if s.webhookSvc != nil {
		s.webhookSvc.DispatchTradeExecuted(trade)
	}
	return trade, nil
}

// GetUserStock values a single holding of the user.
func (s *TradeService) GetUserStock(userID domain.UserID, stockID domain.StockID) (*engine.StockValue, error) {
	if err := validateIDs(userID, stockID); err != nil {
		return nil, err
	}
	return s.trader.StockValue(userID, stockID)
}

// GetPortfolio values all holdings of the user.
func (s *TradeService) GetPortfolio(userID domain.UserID) (*engine.Portfolio, error) {
	if userID <= 0 {
		return nil, &domain.ValidationError{Message: "user_id must be a positive integer"}
	}
	return s.trader.PortfolioTotal(userID)
}

// ListTrades returns a paginated list of a user's trades, newest first,
// with optional side filtering.
func (s *TradeService) ListTrades(userID domain.UserID, side *domain.TradeSide, page, limit int) ([]*domain.Trade, int, error) {
	if !s.users.Exists(userID) {
		return nil, 0, domain.ErrUserNotFound
	}

	if side != nil && !ValidTradeSides[*side] {
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("Invalid side filter: '%s'. Must be one of: buy, sell", *side),
		}
	}

	if page < 1 {
		return nil, 0, &domain.ValidationError{
			Message: "page must be >= 1",
		}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{
			Message: "limit must be between 1 and 100",
		}
	}

	trades, total := s.trades.ListByUser(userID, side, page, limit)
	return trades, total, nil
}

func validateIDs(userID domain.UserID, stockID domain.StockID) error {
	if userID <= 0 {
		return &domain.ValidationError{Message: "user_id must be a positive integer"}
	}
	if stockID <= 0 {
		return &domain.ValidationError{Message: "stock_id must be a positive integer"}
	}
	return nil
}

// isRejection reports whether err is a business-rule rejection rather than
// a lookup miss or an internal failure.
func isRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInsufficientBalance) ||
		errors.Is(err, domain.ErrInsufficientHoldings)
}
