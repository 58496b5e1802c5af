package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestRegistry(repo *fakeMealRepo) *SessionRegistry {
	return NewSessionRegistry(func() *MealStore {
		return NewMealStore(repo, &fakeImageStore{}, zap.NewNop())
	}, zap.NewNop())
}

func TestSessionRegistryBindsOncePerUser(t *testing.T) {
	repo := newFakeMealRepo()
	registry := newTestRegistry(repo)
	defer registry.ReleaseAll()

	first := registry.StoreFor("u1")
	second := registry.StoreFor("u1")
	assert.Same(t, first, second, "one store per signed-in user")
	assert.Equal(t, "u1", first.UserID())

	other := registry.StoreFor("u2")
	assert.NotSame(t, first, other)
	assert.Equal(t, "u2", other.UserID())
}

func TestSessionRegistryReleaseUnbinds(t *testing.T) {
	repo := newFakeMealRepo()
	registry := newTestRegistry(repo)

	store := registry.StoreFor("u1")
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo.push("u1", mealDoc("m1", "u1", base, int64(100)))
	waitForMeals(t, store, 1)

	registry.Release("u1")

	assert.Empty(t, store.UserID())
	assert.Empty(t, store.Meals(), "released sessions keep no meals")
	assert.ErrorIs(t, store.WaitReady(context.Background()), ErrNoActiveSession)

	// The next request after sign-out gets a fresh store.
	assert.NotSame(t, store, registry.StoreFor("u1"))
	registry.ReleaseAll()
}

func TestSessionRegistryReleaseUnknownUserIsNoop(t *testing.T) {
	registry := newTestRegistry(newFakeMealRepo())
	registry.Release("never-signed-in")
}
