package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/engine"
	"github.com/efreitasn/miniledger/internal/service"
)

// TradeHandler handles HTTP requests for trading and valuation endpoints.
type TradeHandler struct {
	tradeSvc *service.TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeSvc *service.TradeService) *TradeHandler {
	return &TradeHandler{tradeSvc: tradeSvc}
}

// tradeRequest is the JSON request body for POST /users/{user_id}/buy and
// POST /users/{user_id}/sell.
type tradeRequest struct {
	StockID  *int64           `json:"stock_id"`
	Quantity *decimal.Decimal `json:"quantity"`
}

// tradeResponse is a single trade journal entry.
type tradeResponse struct {
	TradeID    string      `json:"trade_id"`
	UserID     int64       `json:"user_id"`
	StockID    int64       `json:"stock_id"`
	Side       string      `json:"side"`
	Quantity   json.Number `json:"quantity"`
	Price      json.Number `json:"price"`
	Amount     json.Number `json:"amount"`
	Balance    json.Number `json:"balance"`
	Holding    json.Number `json:"holding"`
	ExecutedAt string      `json:"executed_at"`
}

// tradeListResponse is the JSON response for GET /users/{user_id}/trades.
type tradeListResponse struct {
	Trades []tradeResponse `json:"trades"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// stockValueResponse is the JSON response for GET /users/{user_id}/stocks/{stock_id}
// and a single line of the portfolio.
type stockValueResponse struct {
	StockID     int64       `json:"stock_id"`
	Description string      `json:"description"`
	Quantity    json.Number `json:"quantity"`
	Value       json.Number `json:"value"`
}

// portfolioResponse is the JSON response for GET /users/{user_id}/portfolio.
type portfolioResponse struct {
	UserID   int64                `json:"user_id"`
	Balance  json.Number          `json:"balance"`
	Holdings []stockValueResponse `json:"holdings"`
	Total    json.Number          `json:"total"`
	Report   []string             `json:"report"`
}

// Buy handles POST /users/{user_id}/buy.
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradeSvc.Buy)
}

// Sell handles POST /users/{user_id}/sell.
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradeSvc.Sell)
}

func (h *TradeHandler) trade(w http.ResponseWriter, r *http.Request, exec func(service.TradeRequest) (*domain.Trade, error)) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	var req tradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.StockID == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "stock_id is required")
		return
	}
	if req.Quantity == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "quantity is required")
		return
	}

	trade, err := exec(service.TradeRequest{
		UserID:   domain.UserID(userID),
		StockID:  domain.StockID(*req.StockID),
		Quantity: *req.Quantity,
	})
	if err != nil {
		mapUserError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildTradeResponse(trade))
}

// GetUserStock handles GET /users/{user_id}/stocks/{stock_id}.
func (h *TradeHandler) GetUserStock(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	stockID, err := pathID(r, "stock_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	v, err := h.tradeSvc.GetUserStock(domain.UserID(userID), domain.StockID(stockID))
	if err != nil {
		mapUserError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildStockValueResponse(*v))
}

// GetPortfolio handles GET /users/{user_id}/portfolio.
func (h *TradeHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	p, err := h.tradeSvc.GetPortfolio(domain.UserID(userID))
	if err != nil {
		mapUserError(w, err)
		return
	}

	holdings := make([]stockValueResponse, len(p.Holdings))
	for i, v := range p.Holdings {
		holdings[i] = buildStockValueResponse(v)
	}
	WriteJSON(w, http.StatusOK, portfolioResponse{
		UserID:   int64(p.UserID),
		Balance:  jsonDecimal(p.Balance),
		Holdings: holdings,
		Total:    jsonDecimal(p.Total),
		Report:   p.Report,
	})
}

// ListTrades handles GET /users/{user_id}/trades.
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	var sideFilter *domain.TradeSide
	if s := r.URL.Query().Get("side"); s != "" {
		side := domain.TradeSide(s)
		sideFilter = &side
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	trades, total, err := h.tradeSvc.ListTrades(domain.UserID(userID), sideFilter, page, limit)
	if err != nil {
		mapUserError(w, err)
		return
	}

	resp := tradeListResponse{
		Trades: make([]tradeResponse, len(trades)),
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
	for i, t := range trades {
		resp.Trades[i] = buildTradeResponse(t)
	}
	WriteJSON(w, http.StatusOK, resp)
}

func buildTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID:    t.TradeID,
		UserID:     int64(t.UserID),
		StockID:    int64(t.StockID),
		Side:       string(t.Side),
		Quantity:   jsonDecimal(t.Quantity),
		Price:      jsonDecimal(t.Price),
		Amount:     jsonDecimal(t.Amount),
		Balance:    jsonDecimal(t.BalanceAfter),
		Holding:    jsonDecimal(t.HoldingAfter),
		ExecutedAt: formatTime(t.ExecutedAt),
	}
}

func buildStockValueResponse(v engine.StockValue) stockValueResponse {
	return stockValueResponse{
		StockID:     int64(v.StockID),
		Description: v.Description,
		Quantity:    jsonDecimal(v.Quantity),
		Value:       jsonDecimal(v.Value),
	}
}
