package core

import (
	"sync"

	"go.uber.org/zap"
)

// SessionRegistry is the session-binding glue between authentication and the
// meal stores. Each signed-in user gets exactly one bound MealStore; releasing
// a session unbinds and drops it. The registry only reacts to the sign-in and
// sign-out transitions handed to it; it knows nothing about tokens.
type SessionRegistry struct {
	newStore func() *MealStore
	logger   *zap.Logger

	mu     sync.Mutex
	stores map[string]*MealStore
}

// NewSessionRegistry creates a registry that builds stores with the given
// factory.
func NewSessionRegistry(newStore func() *MealStore, logger *zap.Logger) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		newStore: newStore,
		logger:   logger,
		stores:   make(map[string]*MealStore),
	}
}

// StoreFor returns the bound store for the user, creating and binding one on
// first use. The first authenticated request is the signed-in event.
func (r *SessionRegistry) StoreFor(userID string) *MealStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[userID]; ok {
		return store
	}

	store := r.newStore()
	store.Bind(userID)
	r.stores[userID] = store
	r.logger.Info("meal store bound for session", zap.String("userId", userID))
	return store
}

// Release handles the signed-out transition: the user's store is unbound and
// dropped. In-flight deliveries for the old binding are discarded by the
// store's generation check, so nothing from the released session can surface
// afterwards.
func (r *SessionRegistry) Release(userID string) {
	r.mu.Lock()
	store, ok := r.stores[userID]
	if ok {
		delete(r.stores, userID)
	}
	r.mu.Unlock()

	if ok {
		store.Unbind()
		r.logger.Info("meal store released for session", zap.String("userId", userID))
	}
}

// ReleaseAll unbinds every active session, for server shutdown.
func (r *SessionRegistry) ReleaseAll() {
	r.mu.Lock()
	stores := make([]*MealStore, 0, len(r.stores))
	for _, store := range r.stores {
		stores = append(stores, store)
	}
	r.stores = make(map[string]*MealStore)
	r.mu.Unlock()

	for _, store := range stores {
		store.Unbind()
	}
}
