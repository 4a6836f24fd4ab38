package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Step lifecycle status constants
const (
	StepStatusActive    = "active"
	StepStatusGhost     = "ghost"     // Transient AI-preview step, never persisted by the client
	StepStatusSuggested = "suggested" // AI-suggested, awaiting user decision
	StepStatusAccepted  = "accepted"
	StepStatusRejected  = "rejected"
)

// Step represents a concrete unit of work under an intention
type Step struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    string             `bson:"clientId,omitempty" json:"client_id,omitempty"` // Client-generated ID for offline-created steps
	UserID      string             `bson:"userId" json:"user_id"`
	IntentionID string             `bson:"intentionId,omitempty" json:"intention_id,omitempty"` // Links to the owning intention (client ID or hex)
	Title       string             `bson:"title" json:"title"`
	Bucket      string             `bson:"bucket" json:"bucket"`
	Position    int                `bson:"position" json:"position"` // Ordinal within bucket
	Status      string             `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}

// CanonicalID returns the identifier opportunities are keyed by: the hex of
// the Mongo ObjectID when persisted, falling back to the client-generated ID.
// Returns "" for steps that were never stored.
func (s *Step) CanonicalID() string {
	if !s.ID.IsZero() {
		return s.ID.Hex()
	}
	return s.ClientID
}
