package service

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/efreitasn/miniledger/internal/domain"
	"github.com/efreitasn/miniledger/internal/store"
	"github.com/google/uuid"
)

// Webhook event types.
const (
	EventTradeExecuted = "trade.executed"
	EventTradeRejected = "trade.rejected"
)

var validWebhookEvents = map[string]bool{
	EventTradeExecuted: true,
	EventTradeRejected: true,
}

// UpsertWebhookRequest represents the input for webhook registration.
type UpsertWebhookRequest struct {
	UserID domain.UserID
	URL    string
	Events []string
}

// WebhookService handles webhook CRUD and event dispatch.
type WebhookService struct {
	store     *store.WebhookStore
	userStore *store.UserStore
	client    *http.Client
	logger    *slog.Logger
}

// NewWebhookService creates a new WebhookService with the given dependencies.
func NewWebhookService(
	webhookStore *store.WebhookStore,
	userStore *store.UserStore,
	webhookTimeout time.Duration,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		store:     webhookStore,
		userStore: userStore,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		logger: logger,
	}
}

// Upsert validates the request and creates or updates webhook subscriptions.
// Returns the resulting webhooks, whether any new subscriptions were created, and any error.
func (s *WebhookService) Upsert(req UpsertWebhookRequest) ([]*domain.Webhook, bool, error) {
	if !s.userStore.Exists(req.UserID) {
		return nil, false, domain.ErrUserNotFound
	}

	// Validate URL.
	if req.URL == "" {
		return nil, false, &domain.ValidationError{Message: "url is required"}
	}
	if len(req.URL) > 2048 {
		return nil, false, &domain.ValidationError{Message: "url must be at most 2048 characters"}
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || !parsed.IsAbs() {
		return nil, false, &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if parsed.Scheme != "https" {
		return nil, false, &domain.ValidationError{Message: "url must use https scheme"}
	}

	if len(req.Events) == 0 {
		return nil, false, &domain.ValidationError{Message: "events must be a non-empty array"}
	}

	// Deduplicate events while preserving order and validating.
	seen := make(map[string]bool, len(req.Events))
	dedupedEvents := make([]string, 0, len(req.Events))
	for _, event := range req.Events {
		if !validWebhookEvents[event] {
			return nil, false, &domain.ValidationError{
				Message: "Unknown event type: " + event + ". Must be one of: trade.executed, trade.rejected",
			}
		}
		if !seen[event] {
			seen[event] = true
			dedupedEvents = append(dedupedEvents, event)
		}
	}

	// Upsert each (user_id, event) pair.
	now := time.Now().UTC().Truncate(time.Second)
	anyCreated := false
	webhooks := make([]*domain.Webhook, 0, len(dedupedEvents))

	for _, event := range dedupedEvents {
		w := &domain.Webhook{
			WebhookID: uuid.New().String(),
			UserID:    req.UserID,
			Event:     event,
			URL:       req.URL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if s.store.Upsert(w) {
			anyCreated = true
			webhooks = append(webhooks, w)
		} else if existing := s.store.GetByUserEvent(req.UserID, event); existing != nil {
			webhooks = append(webhooks, existing)
		}
	}

	return webhooks, anyCreated, nil
}

// List validates the user exists and returns all webhook subscriptions.
func (s *WebhookService) List(userID domain.UserID) ([]*domain.Webhook, error) {
	if !s.userStore.Exists(userID) {
		return nil, domain.ErrUserNotFound
	}
	return s.store.ListByUser(userID), nil
}

// Delete removes a webhook subscription by ID.
func (s *WebhookService) Delete(webhookID string) error {
	return s.store.Delete(webhookID)
}

// tradeExecutedPayload is the JSON payload for trade.executed webhooks.
type tradeExecutedPayload struct {
	Event     string            `json:"event"`
	Timestamp string            `json:"timestamp"`
	Data      tradeExecutedData `json:"data"`
}

type tradeExecutedData struct {
	TradeID  string      `json:"trade_id"`
	UserID   int64       `json:"user_id"`
	StockID  int64       `json:"stock_id"`
	Side     string      `json:"side"`
	Quantity json.Number `json:"quantity"`
	Price    json.Number `json:"price"`
	Amount   json.Number `json:"amount"`
	Balance  json.Number `json:"balance"`
	Holding  json.Number `json:"holding"`
}

// tradeRejectedPayload is the JSON payload for trade.rejected webhooks.
type tradeRejectedPayload struct {
	Event     string            `json:"event"`
	Timestamp string            `json:"timestamp"`
	Data      tradeRejectedData `json:"data"`
}

type tradeRejectedData struct {
	UserID   int64       `json:"user_id"`
	StockID  int64       `json:"stock_id"`
	Side     string      `json:"side"`
	Quantity json.Number `json:"quantity"`
	Reason   string      `json:"reason"`
}

// DispatchTradeExecuted dispatches a trade.executed webhook notification
// to the trade's user. Fire-and-forget.
func (s *WebhookService) DispatchTradeExecuted(trade *domain.Trade) {
	wh := s.store.GetByUserEvent(trade.UserID, EventTradeExecuted)
	if wh == nil {
		return
	}

	payload := tradeExecutedPayload{
		Event:     EventTradeExecuted,
		Timestamp: trade.ExecutedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		Data: tradeExecutedData{
			TradeID:  trade.TradeID,
			UserID:   int64(trade.UserID),
			StockID:  int64(trade.StockID),
			Side:     string(trade.Side),
			Quantity: json.Number(trade.Quantity.String()),
			Price:    json.Number(trade.Price.String()),
			Amount:   json.Number(trade.Amount.String()),
			Balance:  json.Number(trade.BalanceAfter.String()),
			Holding:  json.Number(trade.HoldingAfter.String()),
		},
	}

	go s.deliver(wh, EventTradeExecuted, payload)
}

// DispatchTradeRejected dispatches a trade.rejected webhook notification
// for a business-rule rejection. Fire-and-forget.
func (s *WebhookService) DispatchTradeRejected(req TradeRequest, side domain.TradeSide, reason error) {
	wh := s.store.GetByUserEvent(req.UserID, EventTradeRejected)
	if wh == nil {
		return
	}

	payload := tradeRejectedPayload{
		Event:     EventTradeRejected,
		Timestamp: time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		Data: tradeRejectedData{
			UserID:   int64(req.UserID),
			StockID:  int64(req.StockID),
			Side:     string(side),
			Quantity: json.Number(req.Quantity.String()),
			Reason:   reason.Error(),
		},
	}

	go s.deliver(wh, EventTradeRejected, payload)
}

// deliver sends the webhook payload via HTTP POST with the required headers.
// Delivery failures are logged and otherwise ignored.
func (s *WebhookService) deliver(wh *domain.Webhook, eventType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", eventType)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("webhook delivery failed",
			slog.String("webhook_id", wh.WebhookID),
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	resp.Body.Close()
}
