package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStepCanonicalID(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name     string
		step     Step
		expected string
	}{
		{"persisted step uses hex", Step{ID: oid, ClientID: "local-1"}, oid.Hex()},
		{"unpersisted step falls back to client ID", Step{ClientID: "local-1"}, "local-1"},
		{"never stored", Step{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.step.CanonicalID(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIsValidBucket(t *testing.T) {
	for _, bucket := range []string{BucketDoNow, BucketDoLater, BucketBeforeGraduation, BucketAfterGraduation} {
		if !IsValidBucket(bucket) {
			t.Errorf("Expected %q to be valid", bucket)
		}
	}
	for _, bucket := range []string{"", "someday", "DO-NOW"} {
		if IsValidBucket(bucket) {
			t.Errorf("Expected %q to be invalid", bucket)
		}
	}
}

func TestBucketOrdering(t *testing.T) {
	if ValidBuckets[BucketDoNow] >= ValidBuckets[BucketDoLater] ||
		ValidBuckets[BucketDoLater] >= ValidBuckets[BucketBeforeGraduation] ||
		ValidBuckets[BucketBeforeGraduation] >= ValidBuckets[BucketAfterGraduation] {
		t.Error("Expected buckets ordered do-now < do-later < before-graduation < after-graduation")
	}
}
