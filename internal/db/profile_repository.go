package db

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calorietracker-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreProfileRepository implements the ProfileRepository interface using Firestore.
type firestoreProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreProfileRepository creates a new instance of firestoreProfileRepository.
func NewFirestoreProfileRepository(client *firestore.Client) ProfileRepository {
	if client == nil {
		panic("Firestore client is not initialized for ProfileRepository")
	}
	return &firestoreProfileRepository{client: client}
}

// Get retrieves a user's profile document. Decoding goes through
// models.ProfileFromDoc so legacy field names (heightCm/weightKg) still load.
func (r *firestoreProfileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for Get operation")
	}

	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, classifyRemoteError("profile for user '"+userID+"'", err)
		}
		return nil, classifyRemoteError("failed to get profile for user '"+userID+"'", err)
	}

	profile, err := models.ProfileFromDoc(docSnap.Ref.ID, docSnap.Data())
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Save creates or fully replaces the user's profile document, writing the
// canonical field names.
func (r *firestoreProfileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	if profile == nil || profile.ID == "" {
		return errors.New("profile with a user ID is required for Save operation")
	}

	_, err := r.client.Collection(usersCollection).Doc(profile.ID).Set(ctx, profile.ToDoc())
	if err != nil {
		return classifyRemoteError("failed to save profile for user '"+profile.ID+"'", err)
	}
	return nil
}
