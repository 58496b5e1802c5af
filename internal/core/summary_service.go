package core

import (
	"time"

	"calorietracker-backend-go/internal/models"
)

// summaryService implements the SummaryService interface. It is pure with
// respect to its input snapshot: summaries are recomputed on every call and
// never cached across mutations of the underlying collection.
type summaryService struct{}

// NewSummaryService creates a new SummaryService instance.
func NewSummaryService() SummaryService {
	return &summaryService{}
}

// startOfDay truncates t to midnight in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Daily filters the collection to [startOfDay(day), startOfDay(day)+1day),
// sums calories, and returns the summary with the matching meals attached in
// their input order.
func (s *summaryService) Daily(meals []models.Meal, day time.Time, goal *int) models.DailySummary {
	dayStart := startOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	dayMeals := make([]models.Meal, 0)
	total := 0
	for _, meal := range meals {
		if !meal.Date.Before(dayStart) && meal.Date.Before(dayEnd) {
			dayMeals = append(dayMeals, meal)
			total += meal.Calories
		}
	}

	return models.DailySummary{
		Date:     dayStart,
		Calories: total,
		Meals:    dayMeals,
		Goal:     goal,
	}
}

// Weekly builds the dense 7-day window ending at the anchor's day, oldest
// first. Every one of the 7 days is present even when empty, and the scalar
// rollups are computed from exactly those 7 entries so they always agree with
// what is displayed.
func (s *summaryService) Weekly(meals []models.Meal, anchor time.Time, goal *int) models.WeeklySummary {
	anchorStart := startOfDay(anchor)

	days := make([]models.DailySummary, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := anchorStart.AddDate(0, 0, -offset)
		days = append(days, s.Daily(meals, day, goal))
	}

	total := 0
	daysWithMeals := 0
	goalMetDays := 0
	for _, day := range days {
		total += day.Calories
		if len(day.Meals) > 0 {
			daysWithMeals++
		}
		if goal != nil && day.Calories <= *goal {
			goalMetDays++
		}
	}

	average := 0
	if daysWithMeals > 0 {
		average = total / daysWithMeals
	}

	return models.WeeklySummary{
		StartDate:       days[0].Date,
		EndDate:         days[6].Date,
		DailySummaries:  days,
		TotalCalories:   total,
		AverageCalories: average,
		GoalMetDays:     goalMetDays,
	}
}
