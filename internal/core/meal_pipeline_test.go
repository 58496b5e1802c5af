package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPipeline(repo *fakeMealRepo, images *fakeImageStore, estimator *fakeEstimator, requireConfirmation bool) *MealPipeline {
	return NewMealPipeline(images, estimator, repo, requireConfirmation, zap.NewNop())
}

func captureInput() CreateMealInput {
	return CreateMealInput{
		UserID:      "u1",
		Image:       []byte("jpeg-bytes"),
		ContentType: "image/jpeg",
		Notes:       "lunch",
		CapturedAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateMealDirectSave(t *testing.T) {
	repo := newFakeMealRepo()
	images := &fakeImageStore{}
	estimator := &fakeEstimator{estimate: &Estimate{TotalCalories: 540}}
	pipeline := newTestPipeline(repo, images, estimator, false)

	result, err := pipeline.CreateMeal(context.Background(), captureInput())
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.Equal(t, "meal-1", result.MealID)

	created := repo.createdMeals()
	require.Len(t, created, 1)
	assert.Equal(t, "u1", created[0].UserID)
	assert.Equal(t, 540, created[0].Calories)
	assert.Equal(t, "lunch", created[0].Notes)
	assert.True(t, strings.HasPrefix(created[0].ImageURL, "https://img.example/meal_images/u1/"))
}

func TestCreateMealRequiresImage(t *testing.T) {
	pipeline := newTestPipeline(newFakeMealRepo(), &fakeImageStore{}, &fakeEstimator{}, false)

	input := captureInput()
	input.Image = nil
	_, err := pipeline.CreateMeal(context.Background(), input)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageCaptured, stageErr.Stage)
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestCreateMealUploadFailureAborts(t *testing.T) {
	repo := newFakeMealRepo()
	images := &fakeImageStore{storeErr: errBoom}
	estimator := &fakeEstimator{estimate: &Estimate{TotalCalories: 540}}
	pipeline := newTestPipeline(repo, images, estimator, false)

	_, err := pipeline.CreateMeal(context.Background(), captureInput())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageUploading, stageErr.Stage)
	assert.Zero(t, estimator.calls, "estimation must not run after a failed upload")
	assert.Empty(t, repo.createdMeals(), "nothing may be persisted after a failed upload")
}

func TestCreateMealEstimationFailureFallsBackToZero(t *testing.T) {
	repo := newFakeMealRepo()
	estimator := &fakeEstimator{err: ErrEstimationUnavailable}
	pipeline := newTestPipeline(repo, &fakeImageStore{}, estimator, false)

	result, err := pipeline.CreateMeal(context.Background(), captureInput())
	require.NoError(t, err, "an unavailable estimator is not a pipeline failure")
	assert.True(t, result.Committed)

	created := repo.createdMeals()
	require.Len(t, created, 1)
	assert.Zero(t, created[0].Calories)
}

func TestCreateMealManualCaloriesSkipEstimationAndConfirmation(t *testing.T) {
	repo := newFakeMealRepo()
	estimator := &fakeEstimator{estimate: &Estimate{TotalCalories: 999}}
	pipeline := newTestPipeline(repo, &fakeImageStore{}, estimator, true)

	input := captureInput()
	manual := 620
	input.ManualCalories = &manual

	result, err := pipeline.CreateMeal(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.Committed, "manual entry is already confirmed")
	assert.Zero(t, estimator.calls)

	created := repo.createdMeals()
	require.Len(t, created, 1)
	assert.Equal(t, 620, created[0].Calories)
}

func TestCreateMealConfirmationFlow(t *testing.T) {
	repo := newFakeMealRepo()
	estimator := &fakeEstimator{estimate: &Estimate{
		TotalCalories: 540,
		Items:         []FoodItem{{Name: "salad"}},
	}}
	pipeline := newTestPipeline(repo, &fakeImageStore{}, estimator, true)

	result, err := pipeline.CreateMeal(context.Background(), captureInput())
	require.NoError(t, err)
	assert.False(t, result.Committed)
	require.NotNil(t, result.Attempt)
	assert.Equal(t, 540, result.Attempt.EstimatedCalories)
	assert.Empty(t, repo.createdMeals(), "nothing is persisted before confirmation")

	// The caller adjusts the estimate downward before confirming.
	mealID, err := pipeline.Confirm(context.Background(), "u1", result.Attempt.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, "meal-1", mealID)

	created := repo.createdMeals()
	require.Len(t, created, 1)
	assert.Equal(t, 500, created[0].Calories)
	assert.Equal(t, "lunch", created[0].Notes)

	// The attempt is consumed.
	_, err = pipeline.Confirm(context.Background(), "u1", result.Attempt.ID, 500)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestConfirmClampsNegativeCalories(t *testing.T) {
	repo := newFakeMealRepo()
	pipeline := newTestPipeline(repo, &fakeImageStore{}, &fakeEstimator{estimate: &Estimate{TotalCalories: 540}}, true)

	result, err := pipeline.CreateMeal(context.Background(), captureInput())
	require.NoError(t, err)

	_, err = pipeline.Confirm(context.Background(), "u1", result.Attempt.ID, -50)
	require.NoError(t, err)
	assert.Zero(t, repo.createdMeals()[0].Calories)
}

func TestConfirmNeverLeaksAcrossUsers(t *testing.T) {
	repo := newFakeMealRepo()
	pipeline := newTestPipeline(repo, &fakeImageStore{}, &fakeEstimator{estimate: &Estimate{TotalCalories: 540}}, true)

	result, err := pipeline.CreateMeal(context.Background(), captureInput())
	require.NoError(t, err)

	_, err = pipeline.Confirm(context.Background(), "someone-else", result.Attempt.ID, 500)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
	assert.Empty(t, repo.createdMeals())

	_, err = pipeline.Confirm(context.Background(), "u1", "no-such-attempt", 500)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestConfirmPersistFailureKeepsAttemptPending(t *testing.T) {
	repo := newFakeMealRepo()
	pipeline := newTestPipeline(repo, &fakeImageStore{}, &fakeEstimator{estimate: &Estimate{TotalCalories: 540}}, true)

	result, err := pipeline.CreateMeal(context.Background(), captureInput())
	require.NoError(t, err)

	repo.mu.Lock()
	repo.createErr = errBoom
	repo.mu.Unlock()

	_, err = pipeline.Confirm(context.Background(), "u1", result.Attempt.ID, 500)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePersisting, stageErr.Stage)
	assert.ErrorIs(t, err, errBoom)

	// The attempt survives the failed persist, so the same confirmation can be
	// retried once the backend recovers.
	repo.mu.Lock()
	repo.createErr = nil
	repo.mu.Unlock()

	mealID, err := pipeline.Confirm(context.Background(), "u1", result.Attempt.ID, 500)
	require.NoError(t, err)
	assert.NotEmpty(t, mealID)
}

func TestDiscardUserDropsPendingAttempts(t *testing.T) {
	repo := newFakeMealRepo()
	pipeline := newTestPipeline(repo, &fakeImageStore{}, &fakeEstimator{estimate: &Estimate{TotalCalories: 540}}, true)

	result, err := pipeline.CreateMeal(context.Background(), captureInput())
	require.NoError(t, err)

	otherInput := captureInput()
	otherInput.UserID = "u2"
	otherResult, err := pipeline.CreateMeal(context.Background(), otherInput)
	require.NoError(t, err)

	pipeline.DiscardUser("u1")

	_, err = pipeline.Confirm(context.Background(), "u1", result.Attempt.ID, 500)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	// Other users' attempts are untouched.
	_, err = pipeline.Confirm(context.Background(), "u2", otherResult.Attempt.ID, 500)
	assert.NoError(t, err)
}

func TestStageErrorUnwraps(t *testing.T) {
	inner := errors.New("disk full")
	err := &StageError{Stage: StagePersisting, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "persisting")
}
