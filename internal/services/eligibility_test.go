package services

import (
	"testing"

	"kingscanvas/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsStepEligible(t *testing.T) {
	persistedID := primitive.NewObjectID()

	tests := []struct {
		name     string
		step     *models.Step
		expected bool
	}{
		{"nil step", nil, false},
		{"no identifier at all", &models.Step{Status: models.StepStatusActive}, false},
		{"active with object ID", &models.Step{ID: persistedID, Status: models.StepStatusActive}, true},
		{"active with client ID only", &models.Step{ClientID: "local-42", Status: models.StepStatusActive}, true},
		{"accepted", &models.Step{ID: persistedID, Status: models.StepStatusAccepted}, true},
		{"no status", &models.Step{ID: persistedID}, true},
		{"unknown status", &models.Step{ID: persistedID, Status: "archived"}, true},
		{"ghost", &models.Step{ID: persistedID, Status: models.StepStatusGhost}, false},
		{"suggested", &models.Step{ID: persistedID, Status: models.StepStatusSuggested}, false},
		{"rejected", &models.Step{ID: persistedID, Status: models.StepStatusRejected}, false},
		{"uppercase ghost", &models.Step{ID: persistedID, Status: "GHOST"}, false},
		{"padded rejected", &models.Step{ID: persistedID, Status: "  rejected  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStepEligible(tt.step); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
