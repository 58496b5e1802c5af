package core

import (
	"context"
	"time"

	"calorietracker-backend-go/internal/models"
)

// SummaryService derives daily and weekly nutrition summaries from a meal
// collection snapshot. Implementations must be pure: the same snapshot and
// arguments always yield the same summary.
type SummaryService interface {
	Daily(meals []models.Meal, day time.Time, goal *int) models.DailySummary
	Weekly(meals []models.Meal, anchor time.Time, goal *int) models.WeeklySummary
}

// FoodItem is one detected food in an estimation response.
type FoodItem struct {
	Name     string   `json:"name"`
	Grams    *float64 `json:"grams,omitempty"`
	Calories *int     `json:"calories,omitempty"`
}

// Estimate is the calorie estimation result for one food photo.
type Estimate struct {
	TotalCalories int        `json:"totalCalories"`
	Items         []FoodItem `json:"items"`
}

// EstimationService estimates calories from a meal photo using a remote AI
// collaborator. A missing credential, network failure or malformed response is
// reported as an error wrapping ErrEstimationUnavailable; the pipeline treats
// that as non-fatal and falls back to a zero estimate.
type EstimationService interface {
	EstimateCalories(ctx context.Context, image []byte) (*Estimate, error)
}
