package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"calorietracker-backend-go/internal/db"
	"calorietracker-backend-go/internal/models"
)

// fakeMealRepo is an in-memory MealRepository whose snapshot streams are fed
// by the test.
type fakeMealRepo struct {
	mu        sync.Mutex
	watches   map[string]chan db.MealSnapshot
	created   []*models.Meal
	deleted   []string
	createErr error
	deleteErr error
	nextID    int
}

func newFakeMealRepo() *fakeMealRepo {
	return &fakeMealRepo{watches: make(map[string]chan db.MealSnapshot)}
}

func (f *fakeMealRepo) Create(ctx context.Context, meal *models.Meal) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	meal.ID = fmt.Sprintf("meal-%d", f.nextID)
	stored := *meal
	f.created = append(f.created, &stored)
	return meal.ID, nil
}

func (f *fakeMealRepo) Delete(ctx context.Context, mealID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, mealID)
	return nil
}

func (f *fakeMealRepo) ListByUser(ctx context.Context, userID string) ([]db.RawDocument, error) {
	return nil, nil
}

func (f *fakeMealRepo) Watch(ctx context.Context, userID string) <-chan db.MealSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan db.MealSnapshot, 8)
	f.watches[userID] = ch
	return ch
}

// push feeds one complete snapshot into the user's stream.
func (f *fakeMealRepo) push(userID string, docs ...db.RawDocument) {
	f.mu.Lock()
	ch := f.watches[userID]
	f.mu.Unlock()
	ch <- db.MealSnapshot{Docs: docs}
}

func (f *fakeMealRepo) createdMeals() []*models.Meal {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Meal, len(f.created))
	copy(out, f.created)
	return out
}

func (f *fakeMealRepo) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deleted))
	copy(out, f.deleted)
	return out
}

// fakeImageStore records stores and deletes.
type fakeImageStore struct {
	mu        sync.Mutex
	stored    []string
	deleted   []string
	storeErr  error
	deleteErr error
}

func (f *fakeImageStore) Store(ctx context.Context, data []byte, path, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.stored = append(f.stored, path)
	return "https://img.example/" + path, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeImageStore) deletedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deleted))
	copy(out, f.deleted)
	return out
}

// fakeEstimator returns a fixed estimate or error.
type fakeEstimator struct {
	estimate *Estimate
	err      error
	calls    int
}

func (f *fakeEstimator) EstimateCalories(ctx context.Context, image []byte) (*Estimate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.estimate, nil
}

var errBoom = errors.New("boom")
