package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"calorietracker-backend-go/internal/db"
	"calorietracker-backend-go/internal/models"
)

// Stage names the steps of one meal-creation attempt.
type Stage string

const (
	StageCaptured             Stage = "captured"
	StageUploading            Stage = "uploading"
	StageEstimating           Stage = "estimating"
	StageAwaitingConfirmation Stage = "awaitingConfirmation"
	StagePersisting           Stage = "persisting"
	StageCommitted            Stage = "committed"
)

// StageError is the typed failure outcome of a pipeline stage. The attempt
// stops at the failed stage; the caller decides whether and what to retry.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("meal creation failed at stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Custom errors for the MealPipeline.
var (
	ErrEstimationUnavailable = errors.New("calorie estimation unavailable")
	ErrAttemptNotFound       = errors.New("pending meal attempt not found")
	ErrImageRequired         = errors.New("an image is required to create a meal")
)

// CreateMealInput carries one captured meal into the pipeline.
type CreateMealInput struct {
	UserID      string
	Image       []byte
	ContentType string
	Notes       string
	// ManualCalories, when set, skips estimation and is used verbatim
	// (clamped to >= 0).
	ManualCalories *int
	// CapturedAt defaults to the current time when zero.
	CapturedAt time.Time
}

// PendingAttempt is an attempt parked in AwaitingConfirmation: the image is
// uploaded and an estimate produced, but nothing has been persisted yet.
type PendingAttempt struct {
	ID                string     `json:"attemptId"`
	UserID            string     `json:"-"`
	ImageURL          string     `json:"imageUrl"`
	EstimatedCalories int        `json:"estimatedCalories"`
	Items             []FoodItem `json:"items,omitempty"`
	Notes             string     `json:"-"`
	CapturedAt        time.Time  `json:"-"`
}

// CreateMealResult is the outcome of CreateMeal: either a committed meal ID or
// a pending attempt awaiting confirmation.
type CreateMealResult struct {
	Committed bool
	MealID    string
	Attempt   *PendingAttempt
}

// MealPipeline drives the staged meal-creation workflow:
// Captured -> Uploading -> Estimating -> AwaitingConfirmation -> Persisting ->
// Committed, with a typed failure terminal reachable from any stage.
//
// Stages within one attempt run strictly sequentially; independent attempts
// may run concurrently and share no mutable state beyond the pending map.
type MealPipeline struct {
	images    db.ImageStore
	estimator EstimationService
	meals     db.MealRepository
	logger    *zap.Logger

	// requireConfirmation parks estimated attempts for the caller to adjust;
	// when false the pipeline has direct-save semantics.
	requireConfirmation bool

	mu      sync.Mutex
	pending map[string]*PendingAttempt
}

// NewMealPipeline creates a MealPipeline.
func NewMealPipeline(
	images db.ImageStore,
	estimator EstimationService,
	meals db.MealRepository,
	requireConfirmation bool,
	logger *zap.Logger,
) *MealPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealPipeline{
		images:              images,
		estimator:           estimator,
		meals:               meals,
		logger:              logger,
		requireConfirmation: requireConfirmation,
		pending:             make(map[string]*PendingAttempt),
	}
}

// CreateMeal runs one creation attempt up to either Committed or
// AwaitingConfirmation.
//
// Upload failures abort the attempt: no partial meal is ever written without
// an image URL. Estimation failures do not: the attempt proceeds with a
// zero-calorie fallback, surfaced only through the value presented for
// confirmation. Persist failures leave the uploaded image in place (an
// accepted orphan-blob risk, symmetric to the delete path).
func (p *MealPipeline) CreateMeal(ctx context.Context, input CreateMealInput) (*CreateMealResult, error) {
	// Captured
	if input.UserID == "" {
		return nil, &StageError{Stage: StageCaptured, Err: errors.New("user ID is required")}
	}
	if len(input.Image) == 0 {
		return nil, &StageError{Stage: StageCaptured, Err: ErrImageRequired}
	}
	capturedAt := input.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	// Uploading
	path := fmt.Sprintf("meal_images/%s/%s.jpg", input.UserID, uuid.NewString())
	imageURL, err := p.images.Store(ctx, input.Image, path, contentType)
	if err != nil {
		return nil, &StageError{Stage: StageUploading, Err: err}
	}

	// Estimating
	calories := 0
	var items []FoodItem
	if input.ManualCalories != nil {
		calories = *input.ManualCalories
		if calories < 0 {
			calories = 0
		}
	} else {
		estimate, err := p.estimator.EstimateCalories(ctx, input.Image)
		if err != nil {
			// Recognized, non-fatal: fall back to zero and keep going.
			p.logger.Warn("calorie estimation unavailable, falling back to 0",
				zap.String("userId", input.UserID),
				zap.Error(err))
		} else {
			calories = estimate.TotalCalories
			if calories < 0 {
				calories = 0
			}
			items = estimate.Items
		}
	}

	// AwaitingConfirmation (policy-selectable; manual entry is already confirmed)
	if p.requireConfirmation && input.ManualCalories == nil {
		attempt := &PendingAttempt{
			ID:                uuid.NewString(),
			UserID:            input.UserID,
			ImageURL:          imageURL,
			EstimatedCalories: calories,
			Items:             items,
			Notes:             input.Notes,
			CapturedAt:        capturedAt,
		}
		p.mu.Lock()
		p.pending[attempt.ID] = attempt
		p.mu.Unlock()
		return &CreateMealResult{Attempt: attempt}, nil
	}

	// Persisting -> Committed
	mealID, err := p.persist(ctx, input.UserID, imageURL, calories, input.Notes, capturedAt)
	if err != nil {
		return nil, err
	}
	return &CreateMealResult{Committed: true, MealID: mealID}, nil
}

// Confirm completes a pending attempt with the caller's final calorie value
// (clamped to >= 0). On persist failure the attempt stays pending so the
// caller can retry just the failed stage.
func (p *MealPipeline) Confirm(ctx context.Context, userID, attemptID string, calories int) (string, error) {
	p.mu.Lock()
	attempt, ok := p.pending[attemptID]
	if ok && attempt.UserID != userID {
		ok = false // never leak another user's attempt
	}
	p.mu.Unlock()
	if !ok {
		return "", ErrAttemptNotFound
	}

	if calories < 0 {
		calories = 0
	}

	mealID, err := p.persist(ctx, attempt.UserID, attempt.ImageURL, calories, attempt.Notes, attempt.CapturedAt)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	delete(p.pending, attemptID)
	p.mu.Unlock()
	return mealID, nil
}

// persist writes the meal document. The created record becomes visible to
// readers only once the store's subscription delivers the next snapshot.
func (p *MealPipeline) persist(ctx context.Context, userID, imageURL string, calories int, notes string, capturedAt time.Time) (string, error) {
	meal := &models.Meal{
		UserID:   userID,
		ImageURL: imageURL,
		Calories: calories,
		Date:     capturedAt,
		Notes:    notes,
	}
	mealID, err := p.meals.Create(ctx, meal)
	if err != nil {
		p.logger.Warn("meal image left orphaned after persist failure",
			zap.String("userId", userID),
			zap.String("imageUrl", imageURL),
			zap.Error(err))
		return "", &StageError{Stage: StagePersisting, Err: err}
	}
	return mealID, nil
}

// DiscardUser drops all pending attempts for a user. Called when the owning
// session ends; a confirmation arriving afterwards gets ErrAttemptNotFound.
func (p *MealPipeline) DiscardUser(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, attempt := range p.pending {
		if attempt.UserID == userID {
			delete(p.pending, id)
		}
	}
}
