package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"calorietracker-backend-go/internal/db"
	"calorietracker-backend-go/internal/models"
)

// Custom errors for the MealStore.
var (
	ErrMealNotFound    = errors.New("meal not found in the current collection")
	ErrNoActiveSession = errors.New("no user is bound to the meal store")
)

// MealStore owns the canonical in-memory meal collection for one bound user.
// It consumes the remote snapshot stream, reconciles each delivery into an
// ordered collection (newest first), and fans reconciled states out to
// subscribers.
//
// The store never inserts or removes meals locally on its own writes: create
// and delete become visible only when the next remote snapshot arrives, so the
// observable collection and the backing store cannot diverge.
type MealStore struct {
	repo   db.MealRepository
	images db.ImageStore
	logger *zap.Logger

	mu          sync.Mutex
	userID      string
	generation  uint64 // bumped on every bind/unbind; stale deliveries are discarded
	cancelWatch context.CancelFunc
	meals       []models.Meal
	readyCh     chan struct{} // closed once the first snapshot for the current binding lands
	subs        map[int]chan []models.Meal
	nextSubID   int
}

// NewMealStore creates an unbound MealStore.
func NewMealStore(repo db.MealRepository, images db.ImageStore, logger *zap.Logger) *MealStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealStore{
		repo:    repo,
		images:  images,
		logger:  logger,
		readyCh: make(chan struct{}),
		subs:    make(map[int]chan []models.Meal),
	}
}

// Bind subscribes the store to the given user's meal stream. Any previous
// subscription is dropped under the same lock before the new one is
// established; there is never a window with two active subscriptions, and
// meals of a previous user never survive a switch.
func (s *MealStore) Bind(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == userID && s.cancelWatch != nil {
		return // already bound to this user
	}

	s.teardownLocked()
	s.userID = userID
	if userID == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelWatch = cancel
	gen := s.generation

	snapshots := s.repo.Watch(ctx, userID)
	go s.consume(gen, userID, snapshots)
}

// Unbind drops the current subscription and clears the collection.
func (s *MealStore) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.userID = ""
}

// teardownLocked cancels the active watch, clears the collection, and bumps
// the generation so in-flight deliveries for the old binding are discarded.
// Callers must hold s.mu.
func (s *MealStore) teardownLocked() {
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
	s.generation++
	s.meals = nil
	s.readyCh = make(chan struct{})
	s.notifyLocked()
}

// consume forwards snapshot deliveries from the repository into the store.
// Stream errors are logged and do not clear the last good collection; the
// next successful snapshot carries the full state again.
func (s *MealStore) consume(gen uint64, userID string, snapshots <-chan db.MealSnapshot) {
	for snap := range snapshots {
		if snap.Err != nil {
			s.logger.Error("meal snapshot stream failed",
				zap.String("userId", userID),
				zap.Error(snap.Err))
			continue
		}
		s.apply(gen, userID, snap.Docs)
	}
}

// apply reconciles one snapshot into the collection, unless the binding has
// changed since the delivery was produced.
func (s *MealStore) apply(gen uint64, userID string, docs []db.RawDocument) {
	meals := ReconcileMeals(userID, docs, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return // completion from a torn-down session; discard
	}
	s.meals = meals
	select {
	case <-s.readyCh:
	default:
		close(s.readyCh)
	}
	s.notifyLocked()
}

// ReconcileMeals maps a full remote snapshot to the reconciled local
// collection. It is a pure function of its inputs: documents failing
// required-field validation are skipped (and logged), documents belonging to a
// different user are dropped, and the result is ordered newest first with the
// document ID as a deterministic tie-break. Feeding the same snapshot twice
// yields an identical collection.
func ReconcileMeals(userID string, docs []db.RawDocument, logger *zap.Logger) []models.Meal {
	if logger == nil {
		logger = zap.NewNop()
	}

	meals := make([]models.Meal, 0, len(docs))
	for _, doc := range docs {
		meal, err := models.MealFromDoc(doc.ID, doc.Data)
		if err != nil {
			logger.Warn("skipping malformed meal document",
				zap.String("docId", doc.ID),
				zap.Error(err))
			continue
		}
		if meal.UserID != userID {
			logger.Warn("skipping meal document owned by another user",
				zap.String("docId", doc.ID))
			continue
		}
		meals = append(meals, meal)
	}

	sort.SliceStable(meals, func(i, j int) bool {
		if meals[i].Date.Equal(meals[j].Date) {
			return meals[i].ID < meals[j].ID
		}
		return meals[i].Date.After(meals[j].Date)
	})
	return meals
}

// Meals returns a copy of the current reconciled collection, newest first.
// The copy is a fully-formed snapshot: concurrent reconciliation never shows
// a partially-applied update.
func (s *MealStore) Meals() []models.Meal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Meal, len(s.meals))
	copy(out, s.meals)
	return out
}

// UserID returns the currently bound user, or "" when unbound.
func (s *MealStore) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// WaitReady blocks until the first snapshot for the current binding has been
// applied, or ctx is done.
func (s *MealStore) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	ready := s.readyCh
	s.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a consumer of reconciled collection states. The channel
// always carries the latest state (intermediate states may be coalesced when
// the consumer is slow). The returned function cancels the subscription.
func (s *MealStore) Subscribe() (<-chan []models.Meal, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan []models.Meal, 1)
	s.subs[id] = ch

	// Seed with the current state so late subscribers don't wait for a change.
	current := make([]models.Meal, len(s.meals))
	copy(current, s.meals)
	ch <- current

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// notifyLocked fans the current collection out to subscribers, latest-wins.
// Callers must hold s.mu.
func (s *MealStore) notifyLocked() {
	for _, ch := range s.subs {
		snapshot := make([]models.Meal, len(s.meals))
		copy(snapshot, s.meals)
		select {
		case ch <- snapshot:
		default:
			// Drop the stale buffered state and replace it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// DeleteMeal removes the meal document, then attempts to remove its image
// blob. The local view keeps the record until the subsequent snapshot arrives.
//
// A blob-delete failure after a successful document delete leaves an orphaned
// blob; that is an accepted failure mode, reported through the returned URL
// (and a WARN log) rather than an error, and not retried automatically.
func (s *MealStore) DeleteMeal(ctx context.Context, mealID string) (orphanedImageURL string, err error) {
	s.mu.Lock()
	userID := s.userID
	var target *models.Meal
	for i := range s.meals {
		if s.meals[i].ID == mealID {
			m := s.meals[i]
			target = &m
			break
		}
	}
	s.mu.Unlock()

	if userID == "" {
		return "", ErrNoActiveSession
	}
	if target == nil {
		return "", ErrMealNotFound
	}

	if err := s.repo.Delete(ctx, mealID); err != nil {
		return "", fmt.Errorf("failed to delete meal document: %w", err)
	}

	if target.ImageURL != "" {
		if err := s.images.Delete(ctx, target.ImageURL); err != nil {
			s.logger.Warn("meal image left orphaned after delete",
				zap.String("mealId", mealID),
				zap.String("imageUrl", target.ImageURL),
				zap.Error(err))
			return target.ImageURL, nil
		}
	}
	return "", nil
}
