package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/service"
)

// UserHandler handles HTTP requests for user registration and balances.
type UserHandler struct {
	userSvc *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// registerUserRequest is the JSON request body for POST /users.
type registerUserRequest struct {
	UserID          *int64           `json:"user_id"`
	InitialBalance  *decimal.Decimal `json:"initial_balance"`
	InitialHoldings []holdingInput   `json:"initial_holdings"`
}

// holdingInput is a single holding in the registration request.
type holdingInput struct {
	StockID  int64           `json:"stock_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// holdingResponse is a single holding in a user response.
type holdingResponse struct {
	StockID  int64       `json:"stock_id"`
	Quantity json.Number `json:"quantity"`
}

// userResponse is the JSON response for POST /users and GET /users/{user_id}.
type userResponse struct {
	UserID    int64             `json:"user_id"`
	Balance   json.Number       `json:"balance"`
	Holdings  []holdingResponse `json:"holdings"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.UserID == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "user_id is required")
		return
	}

	balance := decimal.Zero
	if req.InitialBalance != nil {
		balance = *req.InitialBalance
	}

	holdings := make([]service.HoldingInput, len(req.InitialHoldings))
	for i, h := range req.InitialHoldings {
		holdings[i] = service.HoldingInput{
			StockID:  domain.StockID(h.StockID),
			Quantity: h.Quantity,
		}
	}

	user, err := h.userSvc.Register(service.RegisterUserRequest{
		UserID:          domain.UserID(*req.UserID),
		InitialBalance:  balance,
		InitialHoldings: holdings,
	})
	if err != nil {
		mapUserError(w, err)
		return
	}

	view, err := h.userSvc.GetUser(user.ID)
	if err != nil {
		mapUserError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildUserResponse(view))
}

// Get handles GET /users/{user_id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	view, err := h.userSvc.GetUser(domain.UserID(id))
	if err != nil {
		mapUserError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildUserResponse(view))
}

func buildUserResponse(v *service.UserView) userResponse {
	holdings := make([]holdingResponse, len(v.Holdings))
	for i, h := range v.Holdings {
		holdings[i] = holdingResponse{
			StockID:  int64(h.StockID),
			Quantity: jsonDecimal(h.Quantity),
		}
	}
	return userResponse{
		UserID:    int64(v.UserID),
		Balance:   jsonDecimal(v.Balance),
		Holdings:  holdings,
		CreatedAt: formatTime(v.CreatedAt),
		UpdatedAt: formatTime(v.UpdatedAt),
	}
}

// mapUserError maps domain errors to HTTP responses for user and trade
// endpoints.
func mapUserError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be >= 0")
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", "User not found")
	case errors.Is(err, domain.ErrStockNotFound):
		WriteError(w, http.StatusNotFound, "stock_not_found", "Stock not found")
	case errors.Is(err, domain.ErrUserAlreadyExists):
		WriteError(w, http.StatusConflict, "user_already_exists", "User already exists")
	case errors.Is(err, domain.ErrInsufficientBalance):
		WriteError(w, http.StatusConflict, "insufficient_balance", "Insufficient balance for this purchase")
	case errors.Is(err, domain.ErrInsufficientHoldings):
		WriteError(w, http.StatusConflict, "insufficient_holdings", "Insufficient holdings for this sale")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
