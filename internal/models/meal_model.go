package models

import (
	"errors"
	"time"
)

// Decode errors for meal documents. Reconciliation skips (and logs) documents that
// fail required-field validation instead of aborting the whole snapshot.
var (
	ErrMealMissingUserID = errors.New("meal document is missing required field 'userId'")
	ErrMealMissingDate   = errors.New("meal document is missing required field 'date'")
)

// Meal represents a single meal record as stored in the "meals" collection.
// Records are immutable once created; the backend never mutates one in place —
// it deletes and recreates, or simply re-receives an updated version from the
// snapshot stream.
type Meal struct {
	ID       string    `json:"id" firestore:"-"` // Document ID, server-assigned
	UserID   string    `json:"userId" firestore:"userId"`
	ImageURL string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Calories int       `json:"calories" firestore:"calories"`
	Date     time.Time `json:"date" firestore:"date"`
	Notes    string    `json:"notes" firestore:"notes"`
}

// MealFromDoc decodes a raw Firestore document into a Meal.
//
// userId and date are required; a document missing either is rejected.
// calories tolerates the numeric shapes Firestore can deliver (int64, float64)
// and defaults to 0 when absent or unusable. notes and imageUrl default to empty.
// Negative calorie values are clamped to 0.
func MealFromDoc(id string, data map[string]interface{}) (Meal, error) {
	userID, ok := data["userId"].(string)
	if !ok || userID == "" {
		return Meal{}, ErrMealMissingUserID
	}

	date, ok := data["date"].(time.Time)
	if !ok {
		return Meal{}, ErrMealMissingDate
	}

	calories := coerceInt(data["calories"])
	if calories < 0 {
		calories = 0
	}

	notes, _ := data["notes"].(string)
	imageURL, _ := data["imageUrl"].(string)

	return Meal{
		ID:       id,
		UserID:   userID,
		ImageURL: imageURL,
		Calories: calories,
		Date:     date,
		Notes:    notes,
	}, nil
}

// ToDoc converts the meal to its Firestore document representation.
// The document ID is not part of the payload.
func (m Meal) ToDoc() map[string]interface{} {
	doc := map[string]interface{}{
		"userId":   m.UserID,
		"calories": m.Calories,
		"date":     m.Date,
		"notes":    m.Notes,
	}
	if m.ImageURL != "" {
		doc["imageUrl"] = m.ImageURL
	}
	return doc
}

// coerceInt extracts an integer from the numeric shapes the Firestore client
// produces when decoding into interface{}. Anything else yields 0.
func coerceInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}
