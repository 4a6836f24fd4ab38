package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"kingscanvas/internal/database"
	"kingscanvas/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpportunityService handles persistence of opportunities keyed by (user, stepId)
type OpportunityService struct {
	mongodb    *database.MongoDB
	collection *mongo.Collection
}

// NewOpportunityService creates a new opportunity service
func NewOpportunityService(mongodb *database.MongoDB) *OpportunityService {
	return &OpportunityService{
		mongodb:    mongodb,
		collection: mongodb.Collection(database.CollectionOpportunities),
	}
}

// ListForStep returns a step's opportunities in insertion order
func (s *OpportunityService) ListForStep(ctx context.Context, userID, stepID string) ([]models.Opportunity, error) {
	cursor, err := s.collection.Find(
		ctx,
		bson.M{"userId": userID, "stepId": stepID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer cursor.Close(ctx)

	opportunities := []models.Opportunity{}
	if err := cursor.All(ctx, &opportunities); err != nil {
		return nil, fmt.Errorf("failed to decode opportunities: %w", err)
	}

	return opportunities, nil
}

// CountForStep counts stored opportunities for (user, stepId)
func (s *OpportunityService) CountForStep(ctx context.Context, userID, stepID string) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"userId": userID, "stepId": stepID})
	if err != nil {
		return 0, fmt.Errorf("failed to count opportunities: %w", err)
	}
	return count, nil
}

// DeleteForStep removes the whole stored batch for (user, stepId).
// This is the delete half of replace-on-regenerate; the caller awaits it
// before inserting the new batch.
func (s *OpportunityService) DeleteForStep(ctx context.Context, userID, stepID string) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"userId": userID, "stepId": stepID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete opportunities for step: %w", err)
	}
	return result.DeletedCount, nil
}

// CreateMany bulk-inserts a generated batch, preserving order. Each record
// gets a fresh ObjectID and timestamps before insertion.
func (s *OpportunityService) CreateMany(ctx context.Context, opportunities []models.Opportunity) ([]models.Opportunity, error) {
	if len(opportunities) == 0 {
		return []models.Opportunity{}, nil
	}

	now := time.Now()
	docs := make([]interface{}, len(opportunities))
	for i := range opportunities {
		opportunities[i].ID = primitive.NewObjectID()
		opportunities[i].CreatedAt = now
		opportunities[i].UpdatedAt = now
		docs[i] = opportunities[i]
	}

	// Ordered insert so stored order matches producer order
	if _, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, fmt.Errorf("failed to insert opportunities: %w", err)
	}

	return opportunities, nil
}

// Create inserts a single user-authored opportunity
func (s *OpportunityService) Create(ctx context.Context, opp *models.Opportunity) (*models.Opportunity, error) {
	if opp.UserID == "" || opp.StepID == "" {
		return nil, fmt.Errorf("user ID and step ID are required")
	}
	if opp.Title == "" || opp.Summary == "" {
		return nil, fmt.Errorf("title and summary are required")
	}
	if !models.ValidOpportunitySources[opp.Source] {
		return nil, fmt.Errorf("invalid source: %s", opp.Source)
	}
	if !models.ValidOpportunityForms[opp.Form] {
		return nil, fmt.Errorf("invalid form: %s", opp.Form)
	}
	if len(opp.Focus) == 0 {
		return nil, fmt.Errorf("at least one focus value is required")
	}
	for _, f := range opp.Focus {
		if !models.ValidOpportunityFocuses[f] {
			return nil, fmt.Errorf("invalid focus: %s", f)
		}
	}
	if opp.Status == "" {
		opp.Status = models.OpportunityStatusSuggested
	}
	if !models.ValidOpportunityStatuses[opp.Status] {
		return nil, fmt.Errorf("invalid status: %s", opp.Status)
	}

	now := time.Now()
	opp.ID = primitive.NewObjectID()
	opp.CreatedAt = now
	opp.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to insert opportunity: %w", err)
	}

	return opp, nil
}

// UpdateStatus changes an opportunity's status (saved/dismissed/suggested)
func (s *OpportunityService) UpdateStatus(ctx context.Context, userID string, opportunityID primitive.ObjectID, status string) (*models.Opportunity, error) {
	if !models.ValidOpportunityStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	result := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": opportunityID, "userId": userID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var opp models.Opportunity
	if err := result.Decode(&opp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update opportunity status: %w", err)
	}

	return &opp, nil
}

// Delete removes a single opportunity
func (s *OpportunityService) Delete(ctx context.Context, userID string, opportunityID primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": opportunityID, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PurgeDismissedBefore removes dismissed opportunities last touched before the
// cutoff. Used by the nightly retention job.
func (s *OpportunityService) PurgeDismissedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{
		"status":    models.OpportunityStatusDismissed,
		"updatedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge dismissed opportunities: %w", err)
	}

	if result.DeletedCount > 0 {
		log.Printf("🧹 [OPPORTUNITY] Purged %d dismissed opportunities older than %s", result.DeletedCount, cutoff.Format(time.RFC3339))
	}
	return result.DeletedCount, nil
}
