package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/service"
)

// StockHandler handles HTTP requests for catalog endpoints.
type StockHandler struct {
	stockSvc *service.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockSvc *service.StockService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc}
}

// stockResponse is a single catalog entry.
type stockResponse struct {
	StockID     int64       `json:"stock_id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
}

// stockListResponse is the JSON response for GET /stocks.
type stockListResponse struct {
	Stocks []stockResponse `json:"stocks"`
}

// List handles GET /stocks.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	stocks := h.stockSvc.ListStocks()

	resp := stockListResponse{Stocks: make([]stockResponse, len(stocks))}
	for i, st := range stocks {
		resp.Stocks[i] = buildStockResponse(st)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /stocks/{stock_id}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stock_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	stock, err := h.stockSvc.GetStock(domain.StockID(id))
	if err != nil {
		mapStockError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildStockResponse(stock))
}

func buildStockResponse(st *domain.Stock) stockResponse {
	return stockResponse{
		StockID:     int64(st.ID),
		Name:        st.Name,
		Price:       jsonDecimal(st.Price),
		Description: st.String(),
	}
}

// mapStockError maps domain errors to HTTP responses for catalog endpoints.
func mapStockError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrStockNotFound):
		WriteError(w, http.StatusNotFound, "stock_not_found", "Stock not found")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
