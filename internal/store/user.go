package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/efreitasn/miniledger/internal/domain"
)

// UserStore is a thread-safe in-memory store for users, keyed by user id.
// Get returns the live *domain.User, so mutations made under the user's
// lock are visible to every later lookup.
type UserStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]*domain.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[domain.UserID]*domain.User),
	}
}

// Create adds a user to the store. It returns
// domain.ErrUserAlreadyExists if a user with the same ID
// already exists.
func (s *UserStore) Create(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return domain.ErrUserAlreadyExists
	}
	s.users[u.ID] = u
	return nil
}

// Get retrieves a user by ID. It returns
// domain.ErrUserNotFound if the user does not exist.
func (s *UserStore) Get(id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Exists returns true if a user with the given ID exists.
func (s *UserStore) Exists(id domain.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[id]
	return ok
}

// List returns all users in ascending ID order.
func (s *UserStore) List() []*domain.User {
	s.mu.RLock()
	result := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b *domain.User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}
