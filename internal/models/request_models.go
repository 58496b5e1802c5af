package models

// SaveProfileRequest represents the request body for creating or replacing the
// authenticated user's profile.
type SaveProfileRequest struct {
	Gender            string  `json:"gender" binding:"required"`
	Age               int     `json:"age" binding:"required,gt=0"`
	HeightCm          float64 `json:"height" binding:"required,gt=0"`
	WeightKg          float64 `json:"weight" binding:"required,gt=0"`
	ActivityLevel     string  `json:"activityLevel" binding:"required"`
	Goal              string  `json:"goal" binding:"required"`
	DailyCalorieLimit *int    `json:"dailyCalorieLimit,omitempty"`
}

// ConfirmMealRequest represents the request body for confirming a pending meal
// creation attempt with the final calorie value. Values below zero are clamped
// to zero by the pipeline.
type ConfirmMealRequest struct {
	Calories int `json:"calories"`
}
