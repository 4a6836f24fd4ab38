package services

import (
	"context"
	"fmt"
	"time"

	"kingscanvas/internal/database"
	"kingscanvas/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StepService handles CRUD operations for steps
type StepService struct {
	mongodb    *database.MongoDB
	collection *mongo.Collection
}

// NewStepService creates a new step service
func NewStepService(mongodb *database.MongoDB) *StepService {
	return &StepService{
		mongodb:    mongodb,
		collection: mongodb.Collection(database.CollectionSteps),
	}
}

// FindByAnyID looks up a step by its persisted identifier: the Mongo ObjectID
// hex first, then the client-generated ID as a fallback for offline-created
// steps. Returns mongo.ErrNoDocuments when neither matches.
func (s *StepService) FindByAnyID(ctx context.Context, stepID string) (*models.Step, error) {
	if stepID == "" {
		return nil, mongo.ErrNoDocuments
	}

	var step models.Step

	if oid, err := primitive.ObjectIDFromHex(stepID); err == nil {
		err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&step)
		if err == nil {
			return &step, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("failed to find step by object ID: %w", err)
		}
	}

	err := s.collection.FindOne(ctx, bson.M{"clientId": stepID}).Decode(&step)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find step by client ID: %w", err)
	}

	return &step, nil
}

// ListByUser returns all steps for a user, ordered by bucket position
func (s *StepService) ListByUser(ctx context.Context, userID string) ([]models.Step, error) {
	cursor, err := s.collection.Find(
		ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "bucket", Value: 1}, {Key: "position", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer cursor.Close(ctx)

	var steps []models.Step
	if err := cursor.All(ctx, &steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}

	return steps, nil
}

// Create inserts a new step
func (s *StepService) Create(ctx context.Context, step *models.Step) (*models.Step, error) {
	if step.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if step.Title == "" {
		return nil, fmt.Errorf("step title is required")
	}
	if !models.IsValidBucket(step.Bucket) {
		return nil, fmt.Errorf("invalid bucket: %s", step.Bucket)
	}

	now := time.Now()
	step.ID = primitive.NewObjectID()
	step.CreatedAt = now
	step.UpdatedAt = now
	if step.Status == "" {
		step.Status = models.StepStatusActive
	}

	if _, err := s.collection.InsertOne(ctx, step); err != nil {
		return nil, fmt.Errorf("failed to insert step: %w", err)
	}

	return step, nil
}

// Update applies field changes to a user's step and returns the updated record
func (s *StepService) Update(ctx context.Context, userID string, stepID primitive.ObjectID, fields bson.M) (*models.Step, error) {
	fields["updatedAt"] = time.Now()

	result := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": stepID, "userId": userID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var step models.Step
	if err := result.Decode(&step); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update step: %w", err)
	}

	return &step, nil
}

// UpdateStatus transitions a step's lifecycle status (suggested -> accepted/rejected)
func (s *StepService) UpdateStatus(ctx context.Context, userID string, stepID primitive.ObjectID, status string) (*models.Step, error) {
	return s.Update(ctx, userID, stepID, bson.M{"status": status})
}

// Delete removes a user's step
func (s *StepService) Delete(ctx context.Context, userID string, stepID primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": stepID, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
