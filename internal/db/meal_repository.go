package db

import (
	"context"
	"errors"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calorietracker-backend-go/internal/models"
)

const mealsCollection = "meals"

// firestoreMealRepository implements the MealRepository interface using Firestore.
type firestoreMealRepository struct {
	client *firestore.Client
}

// NewFirestoreMealRepository creates a new instance of firestoreMealRepository.
func NewFirestoreMealRepository(client *firestore.Client) MealRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for MealRepository.")
	}
	return &firestoreMealRepository{client: client}
}

// Create adds a new meal document to Firestore with an auto-generated ID and
// sets meal.ID with the new document ID.
func (r *firestoreMealRepository) Create(ctx context.Context, meal *models.Meal) (string, error) {
	docRef := r.client.Collection(mealsCollection).NewDoc()
	meal.ID = docRef.ID

	if _, err := docRef.Create(ctx, meal.ToDoc()); err != nil {
		return "", classifyRemoteError("failed to create meal", err)
	}
	return docRef.ID, nil
}

// Delete removes a meal document from Firestore.
func (r *firestoreMealRepository) Delete(ctx context.Context, mealID string) error {
	if mealID == "" {
		return errors.New("mealID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(mealsCollection).Doc(mealID).Delete(ctx); err != nil {
		return classifyRemoteError("failed to delete meal '"+mealID+"'", err)
	}
	return nil
}

// userMealsQuery is the one query shape the store observes: all of a user's
// meals, newest first. Watch and ListByUser must agree on it so a one-shot
// read matches what the stream would deliver.
func (r *firestoreMealRepository) userMealsQuery(userID string) firestore.Query {
	return r.client.Collection(mealsCollection).
		Where("userId", "==", userID).
		OrderBy("date", firestore.Desc)
}

// ListByUser returns all meal documents for a user as raw documents.
func (r *firestoreMealRepository) ListByUser(ctx context.Context, userID string) ([]RawDocument, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}

	iter := r.userMealsQuery(userID).Documents(ctx)
	defer iter.Stop()

	var docs []RawDocument
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classifyRemoteError("failed to iterate meals for user '"+userID+"'", err)
		}
		docs = append(docs, RawDocument{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return docs, nil
}

// Watch opens a Firestore snapshot listener on the user's meals and forwards
// each complete snapshot to the returned channel. The goroutine exits and the
// channel closes when ctx is cancelled; one terminal MealSnapshot with Err set
// is delivered if the stream fails for any other reason.
func (r *firestoreMealRepository) Watch(ctx context.Context, userID string) <-chan MealSnapshot {
	out := make(chan MealSnapshot, 1)

	go func() {
		defer close(out)

		snapIter := r.userMealsQuery(userID).Snapshots(ctx)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				select {
				case out <- MealSnapshot{Err: classifyRemoteError("meal snapshot stream for user '"+userID+"'", err)}:
				case <-ctx.Done():
				}
				return
			}

			docs := make([]RawDocument, 0, snap.Size)
			docIter := snap.Documents
			readErr := false
			for {
				doc, err := docIter.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					// A broken snapshot read is treated like a stream error;
					// the next snapshot will carry the full state again.
					log.Printf("Warning: failed to read document in meal snapshot for user '%s': %v", userID, err)
					readErr = true
					break
				}
				docs = append(docs, RawDocument{ID: doc.Ref.ID, Data: doc.Data()})
			}
			if readErr {
				continue
			}

			select {
			case out <- MealSnapshot{Docs: docs}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
