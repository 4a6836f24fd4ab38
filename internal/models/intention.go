package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bucket constants - the four ordered time horizons on the canvas
const (
	BucketDoNow            = "do-now"
	BucketDoLater          = "do-later"
	BucketBeforeGraduation = "before-graduation"
	BucketAfterGraduation  = "after-graduation"
)

// ValidBuckets maps bucket IDs to their canvas ordering
var ValidBuckets = map[string]int{
	BucketDoNow:            0,
	BucketDoLater:          1,
	BucketBeforeGraduation: 2,
	BucketAfterGraduation:  3,
}

// IsValidBucket reports whether the given bucket ID is one of the four horizons
func IsValidBucket(bucket string) bool {
	_, ok := ValidBuckets[bucket]
	return ok
}

// Intention represents a student's long-term goal placed in a time-horizon bucket
type Intention struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID  string             `bson:"clientId,omitempty" json:"client_id,omitempty"` // Client-generated ID for offline-created intentions
	UserID    string             `bson:"userId" json:"user_id"`
	Title     string             `bson:"title" json:"title"`
	Bucket    string             `bson:"bucket" json:"bucket"`
	Position  int                `bson:"position" json:"position"` // Ordinal within bucket
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}
