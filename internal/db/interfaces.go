package db

import (
	"context"

	"calorietracker-backend-go/internal/models"
)

// RawDocument is an undecoded document from the remote store. Decoding happens
// in the core layer so that reconciliation stays independent of the transport.
type RawDocument struct {
	ID   string
	Data map[string]interface{}
}

// MealSnapshot is one complete-state delivery from the meal change stream.
// The feed is a snapshot stream, not a diff stream: Docs is always the full
// set of currently-matching documents.
type MealSnapshot struct {
	Docs []RawDocument
	Err  error
}

// MealRepository defines the interface for meal document storage operations.
type MealRepository interface {
	// Create writes a new meal document and returns its server-assigned ID.
	Create(ctx context.Context, meal *models.Meal) (string, error)
	// Delete removes the meal document. The associated image blob is the
	// caller's concern (document first, then blob).
	Delete(ctx context.Context, mealID string) error
	// ListByUser returns the user's meal documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]RawDocument, error)
	// Watch opens a live snapshot stream for the user's meals. The returned
	// channel is closed when ctx is cancelled or the stream dies; a terminal
	// stream error is delivered as a MealSnapshot with Err set.
	Watch(ctx context.Context, userID string) <-chan MealSnapshot
}

// ProfileRepository defines the interface for user profile storage operations.
type ProfileRepository interface {
	// Get returns the user's profile, or ErrNotFound if none exists.
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Save creates or fully replaces the user's profile document.
	Save(ctx context.Context, profile *models.UserProfile) error
}

// ImageStore defines the interface for meal image blob storage.
type ImageStore interface {
	// Store writes the image bytes under path and returns a stable URL.
	Store(ctx context.Context, data []byte, path, contentType string) (string, error)
	// Delete removes the blob a previously returned URL points at.
	Delete(ctx context.Context, url string) error
}
