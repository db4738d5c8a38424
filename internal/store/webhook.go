package store

import (
	"slices"
	"strings"
	"sync"

	"github.com/efreitasn/miniledger/internal/domain"
)

// WebhookStore is a thread-safe in-memory store for webhooks.
// Primary index: webhook_id → webhook.
// Secondary index: user_id → event → webhook.
type WebhookStore struct {
	mu       sync.RWMutex
	webhooks map[string]*domain.Webhook                   // webhook_id → webhook
	byUser   map[domain.UserID]map[string]*domain.Webhook // user_id → event → webhook
}

// NewWebhookStore creates an empty WebhookStore.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{
		webhooks: make(map[string]*domain.Webhook),
		byUser:   make(map[domain.UserID]map[string]*domain.Webhook),
	}
}

// Upsert inserts or updates a webhook subscription keyed by (user_id, event).
// If a subscription already exists for that user+event pair, the URL and
// UpdatedAt are updated (the webhook_id remains stable). If the existing URL
// matches, it is a no-op. Returns true if a new subscription was created.
func (s *WebhookStore) Upsert(w *domain.Webhook) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check if a subscription already exists for this user+event.
	if events, ok := s.byUser[w.UserID]; ok {
		if existing, ok := events[w.Event]; ok {
			// Update URL and UpdatedAt if the URL changed.
			if existing.URL != w.URL {
				existing.URL = w.URL
				existing.UpdatedAt = w.UpdatedAt
			}
			return false
		}
	}

	// New subscription, add to both indexes.
	s.webhooks[w.WebhookID] = w

	if s.byUser[w.UserID] == nil {
		s.byUser[w.UserID] = make(map[string]*domain.Webhook)
	}
	s.byUser[w.UserID][w.Event] = w

	return true
}

// Get retrieves a webhook by ID. It returns
// domain.ErrWebhookNotFound if the webhook does not exist.
func (s *WebhookStore) Get(id string) (*domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.webhooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	return w, nil
}

// ListByUser returns all webhooks for a user ordered by event name.
// Returns an empty slice if the user has no subscriptions.
func (s *WebhookStore) ListByUser(userID domain.UserID) []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byUser[userID]
	if len(events) == 0 {
		return []*domain.Webhook{}
	}

	result := make([]*domain.Webhook, 0, len(events))
	for _, w := range events {
		result = append(result, w)
	}
	slices.SortFunc(result, func(a, b *domain.Webhook) int {
		return strings.Compare(a.Event, b.Event)
	})
	return result
}

// Delete removes a webhook by ID. It returns
// domain.ErrWebhookNotFound if the webhook does not exist.
// Both the primary and secondary indexes are cleaned up.
func (s *WebhookStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[id]
	if !ok {
		return domain.ErrWebhookNotFound
	}

	// Remove from primary index.
	delete(s.webhooks, id)

	// Remove from secondary index.
	if events, ok := s.byUser[w.UserID]; ok {
		delete(events, w.Event)
		if len(events) == 0 {
			delete(s.byUser, w.UserID)
		}
	}

	return nil
}

// GetByUserEvent returns the webhook for a specific user+event pair,
// or nil if no subscription exists.
func (s *WebhookStore) GetByUserEvent(userID domain.UserID, event string) *domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byUser[userID]
	if events == nil {
		return nil
	}
	return events[event]
}
