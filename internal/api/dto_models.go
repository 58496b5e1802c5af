package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message
	Details string `json:"details,omitempty"` // More specific details, if available
	Stage   string `json:"stage,omitempty"`   // Failed pipeline stage, when applicable
}

// MealCreatedResponse is returned when a meal has been committed. The record
// shows up in reads once the snapshot stream delivers it.
type MealCreatedResponse struct {
	ID string `json:"id"`
}

// MealDeletedResponse reports a completed delete, including the accepted
// orphaned-blob case (document removed, image blob left behind).
type MealDeletedResponse struct {
	ID               string `json:"id"`
	OrphanedImageURL string `json:"orphanedImageUrl,omitempty"`
}

// TargetCaloriesResponse carries the computed (or overridden) daily target.
type TargetCaloriesResponse struct {
	TargetCalories int `json:"targetCalories"`
}
