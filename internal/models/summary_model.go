package models

import "time"

// DailySummary is a derived view of all meals whose timestamp falls within one
// calendar day. It is recomputed on every read and never persisted.
type DailySummary struct {
	Date     time.Time `json:"date"` // start of day
	Calories int       `json:"calories"`
	Meals    []Meal    `json:"meals"`
	Goal     *int      `json:"goal,omitempty"` // optional daily target copied in for display
}

// WeeklySummary is a dense window of 7 consecutive DailySummary values ending
// at an anchor day, plus scalar rollups computed from exactly those 7 entries.
type WeeklySummary struct {
	StartDate       time.Time      `json:"startDate"`
	EndDate         time.Time      `json:"endDate"`
	DailySummaries  []DailySummary `json:"dailySummaries"` // oldest first, always 7 entries
	TotalCalories   int            `json:"totalCalories"`
	AverageCalories int            `json:"averageCalories"` // total / days with at least one meal
	GoalMetDays     int            `json:"goalMetDays"`     // days with total <= goal; 0 when no goal is set
}
