package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Opportunity source constants
const (
	OpportunitySourceEdgeSimulated = "edge_simulated" // Produced by the simulation model
	OpportunitySourceIndependent   = "independent"    // Something the student can do on their own
)

// Opportunity form constants
const (
	OpportunityFormIntensive = "intensive"
	OpportunityFormEvergreen = "evergreen"
	OpportunityFormShortForm = "short_form"
	OpportunityFormSustained = "sustained"
)

// Opportunity focus constants
const (
	OpportunityFocusCapability  = "capability"
	OpportunityFocusCapital     = "capital"
	OpportunityFocusCredibility = "credibility"
)

// Opportunity status constants
const (
	OpportunityStatusSuggested = "suggested"
	OpportunityStatusSaved     = "saved"
	OpportunityStatusDismissed = "dismissed"
)

// Closed vocabularies for draft validation
var (
	ValidOpportunitySources = map[string]bool{
		OpportunitySourceEdgeSimulated: true,
		OpportunitySourceIndependent:   true,
	}
	ValidOpportunityForms = map[string]bool{
		OpportunityFormIntensive: true,
		OpportunityFormEvergreen: true,
		OpportunityFormShortForm: true,
		OpportunityFormSustained: true,
	}
	ValidOpportunityFocuses = map[string]bool{
		OpportunityFocusCapability:  true,
		OpportunityFocusCapital:     true,
		OpportunityFocusCredibility: true,
	}
	ValidOpportunityStatuses = map[string]bool{
		OpportunityStatusSuggested: true,
		OpportunityStatusSaved:     true,
		OpportunityStatusDismissed: true,
	}
)

// Opportunity represents a suggested or saved real-world activity linked to one step
type Opportunity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StepID    string             `bson:"stepId" json:"step_id"` // Canonical ID of the owning step
	UserID    string             `bson:"userId" json:"user_id"`
	Title     string             `bson:"title" json:"title"`
	Summary   string             `bson:"summary" json:"summary"`
	Source    string             `bson:"source" json:"source"`
	Form      string             `bson:"form" json:"form"`
	Focus     []string           `bson:"focus" json:"focus"` // Non-empty subset of the focus vocabulary
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// OpportunityDraft is an unpersisted, validated candidate produced by the
// simulation model. Structurally an Opportunity minus identity and linkage.
type OpportunityDraft struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Source  string   `json:"source"`
	Form    string   `json:"form"`
	Focus   []string `json:"focus"`
	Status  string   `json:"status"`
}
