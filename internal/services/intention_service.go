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

// IntentionService handles CRUD operations for intentions
type IntentionService struct {
	mongodb    *database.MongoDB
	collection *mongo.Collection
}

// NewIntentionService creates a new intention service
func NewIntentionService(mongodb *database.MongoDB) *IntentionService {
	return &IntentionService{
		mongodb:    mongodb,
		collection: mongodb.Collection(database.CollectionIntentions),
	}
}

// FindTitle resolves the title of a user's intention by its identifier
// (ObjectID hex or client-generated ID). Returns "" when not found; the
// generation flow proceeds without intention context in that case.
func (s *IntentionService) FindTitle(ctx context.Context, userID, intentionID string) (string, error) {
	if intentionID == "" {
		return "", nil
	}

	filter := bson.M{"userId": userID, "clientId": intentionID}
	if oid, err := primitive.ObjectIDFromHex(intentionID); err == nil {
		filter = bson.M{"userId": userID, "$or": []bson.M{
			{"_id": oid},
			{"clientId": intentionID},
		}}
	}

	var intention models.Intention
	err := s.collection.FindOne(ctx, filter).Decode(&intention)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", fmt.Errorf("failed to find intention: %w", err)
	}

	return intention.Title, nil
}

// ListByUser returns all intentions for a user, ordered by bucket position
func (s *IntentionService) ListByUser(ctx context.Context, userID string) ([]models.Intention, error) {
	cursor, err := s.collection.Find(
		ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "bucket", Value: 1}, {Key: "position", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list intentions: %w", err)
	}
	defer cursor.Close(ctx)

	var intentions []models.Intention
	if err := cursor.All(ctx, &intentions); err != nil {
		return nil, fmt.Errorf("failed to decode intentions: %w", err)
	}

	return intentions, nil
}

// Create inserts a new intention
func (s *IntentionService) Create(ctx context.Context, intention *models.Intention) (*models.Intention, error) {
	if intention.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if intention.Title == "" {
		return nil, fmt.Errorf("intention title is required")
	}
	if !models.IsValidBucket(intention.Bucket) {
		return nil, fmt.Errorf("invalid bucket: %s", intention.Bucket)
	}

	now := time.Now()
	intention.ID = primitive.NewObjectID()
	intention.CreatedAt = now
	intention.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, intention); err != nil {
		return nil, fmt.Errorf("failed to insert intention: %w", err)
	}

	return intention, nil
}

// Update applies field changes to a user's intention and returns the updated record
func (s *IntentionService) Update(ctx context.Context, userID string, intentionID primitive.ObjectID, fields bson.M) (*models.Intention, error) {
	fields["updatedAt"] = time.Now()

	result := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": intentionID, "userId": userID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var intention models.Intention
	if err := result.Decode(&intention); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update intention: %w", err)
	}

	return &intention, nil
}

// Delete removes a user's intention
func (s *IntentionService) Delete(ctx context.Context, userID string, intentionID primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": intentionID, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete intention: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
