package services

import (
	"context"
	"fmt"
	"log"

	"kingscanvas/internal/logging"
	"kingscanvas/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Generation origins. Labels only: they feed logs and metrics, never behavior.
const (
	OriginManual     = "manual"
	OriginShuffle    = "shuffle"
	OriginAIAccepted = "ai-accepted"
	OriginAPIManual  = "api-manual-trigger"
)

// StepNotFoundError indicates the requested step does not exist. Maps to 404
// at the HTTP boundary and is never retried.
type StepNotFoundError struct {
	StepID string
}

func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("step not found: %s", e.StepID)
}

// IneligibleStepError indicates the step exists but must not receive
// opportunities (ghost/suggested/rejected).
type IneligibleStepError struct {
	StepID string
	Status string
}

func (e *IneligibleStepError) Error() string {
	return fmt.Sprintf("step %s is not eligible for opportunities (status %q)", e.StepID, e.Status)
}

// StepResolver looks up a step by its persisted identifier.
type StepResolver interface {
	FindByAnyID(ctx context.Context, stepID string) (*models.Step, error)
}

// IntentionResolver resolves intention context for prompts.
type IntentionResolver interface {
	FindTitle(ctx context.Context, userID, intentionID string) (string, error)
}

// OpportunityStore is the persistence collaborator for generated batches.
type OpportunityStore interface {
	CountForStep(ctx context.Context, userID, stepID string) (int64, error)
	DeleteForStep(ctx context.Context, userID, stepID string) (int64, error)
	CreateMany(ctx context.Context, opportunities []models.Opportunity) ([]models.Opportunity, error)
}

// DraftGenerator produces validated drafts from step context.
type DraftGenerator interface {
	GenerateDrafts(ctx context.Context, stepTitle, intentionTitle, bucketID string) ([]models.OpportunityDraft, error)
}

// GenerationService orchestrates opportunity generation: resolve step context,
// invoke the simulation collaborator, and atomically replace the stored batch.
type GenerationService struct {
	steps         StepResolver
	intentions    IntentionResolver
	opportunities OpportunityStore
	simulation    DraftGenerator
}

// NewGenerationService creates a new generation orchestrator
func NewGenerationService(steps StepResolver, intentions IntentionResolver, opportunities OpportunityStore, simulation DraftGenerator) *GenerationService {
	return &GenerationService{
		steps:         steps,
		intentions:    intentions,
		opportunities: opportunities,
		simulation:    simulation,
	}
}

// GenerateForStep runs one generation for the given step, replacing any prior
// stored batch for (user, stepId). origin is an observability label only.
// Errors are never retried here: a step-lookup miss is a *StepNotFoundError,
// simulation errors (parse or upstream) and store errors propagate as-is.
func (s *GenerationService) GenerateForStep(ctx context.Context, stepID, origin string) ([]models.Opportunity, error) {
	if stepID == "" {
		return nil, &StepNotFoundError{StepID: stepID}
	}

	// 1. Resolve step
	step, err := s.steps.FindByAnyID(ctx, stepID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &StepNotFoundError{StepID: stepID}
		}
		return nil, err
	}

	if !IsStepEligible(step) {
		return nil, &IneligibleStepError{StepID: stepID, Status: step.Status}
	}

	canonicalID := step.CanonicalID()
	logger := logging.WithGeneration(canonicalID, origin, step.UserID)

	// 2. Resolve intention context (optional; generation proceeds without it)
	intentionTitle, err := s.intentions.FindTitle(ctx, step.UserID, step.IntentionID)
	if err != nil {
		logger.Warn("intention lookup failed, generating without intention context", "error", err.Error())
		intentionTitle = ""
	}

	// 3. Invoke the simulation collaborator
	drafts, err := s.simulation.GenerateDrafts(ctx, step.Title, intentionTitle, step.Bucket)
	if err != nil {
		logger.Error("opportunity generation failed", "message", err.Error())
		RecordGeneration(origin, "failed")
		return nil, err
	}

	drafts = ensureIndependent(drafts, step.Title)

	// 4. Replace the persisted batch: the delete must complete before the
	// insert begins so a failed insert leaves the step empty, never mixed.
	deleted, err := s.opportunities.DeleteForStep(ctx, step.UserID, canonicalID)
	if err != nil {
		logger.Error("failed to clear prior opportunities", "message", err.Error())
		RecordGeneration(origin, "failed")
		return nil, err
	}
	if deleted > 0 {
		log.Printf("🔄 [GENERATION] Replaced %d prior opportunities for step %s", deleted, canonicalID)
	}

	// 5. Persist, stamping canonical step ID and owner
	batch := make([]models.Opportunity, len(drafts))
	for i, draft := range drafts {
		batch[i] = models.Opportunity{
			StepID:  canonicalID,
			UserID:  step.UserID,
			Title:   draft.Title,
			Summary: draft.Summary,
			Source:  draft.Source,
			Form:    draft.Form,
			Focus:   draft.Focus,
			Status:  draft.Status,
		}
	}

	stored, err := s.opportunities.CreateMany(ctx, batch)
	if err != nil {
		logger.Error("failed to persist generated opportunities", "message", err.Error())
		RecordGeneration(origin, "failed")
		return nil, err
	}

	logger.Info("opportunities generated", "count", len(stored))
	RecordGeneration(origin, "generated")
	return stored, nil
}

// GenerateIfNeeded is the idempotency wrapper used by auto-generation
// triggers: it skips generation entirely when the step already has stored
// opportunities, so repeated step saves do not repeatedly regenerate.
// Returns (opportunities, skipped, error).
func (s *GenerationService) GenerateIfNeeded(ctx context.Context, stepID, origin string) ([]models.Opportunity, bool, error) {
	if stepID == "" {
		return nil, false, &StepNotFoundError{StepID: stepID}
	}

	step, err := s.steps.FindByAnyID(ctx, stepID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, &StepNotFoundError{StepID: stepID}
		}
		return nil, false, err
	}

	if !IsStepEligible(step) {
		return nil, true, nil
	}

	count, err := s.opportunities.CountForStep(ctx, step.UserID, step.CanonicalID())
	if err != nil {
		return nil, false, err
	}
	if count > 0 {
		RecordGeneration(origin, "skipped")
		return nil, true, nil
	}

	opportunities, err := s.GenerateForStep(ctx, stepID, origin)
	if err != nil {
		return nil, false, err
	}
	return opportunities, false, nil
}

// ensureIndependent guarantees the batch carries at least one independent
// opportunity. The prompt asks the model for exactly one, but that is
// best-effort; when the model omits it, a default is appended. An empty batch
// stays empty.
func ensureIndependent(drafts []models.OpportunityDraft, stepTitle string) []models.OpportunityDraft {
	if len(drafts) == 0 {
		return drafts
	}
	for _, draft := range drafts {
		if draft.Source == models.OpportunitySourceIndependent {
			return drafts
		}
	}

	return append(drafts, models.OpportunityDraft{
		Title:   "Chart your own path",
		Summary: fmt.Sprintf("Spend an hour researching how others approached %q and sketch your own next move.", stepTitle),
		Source:  models.OpportunitySourceIndependent,
		Form:    models.OpportunityFormShortForm,
		Focus:   []string{models.OpportunityFocusCapability},
		Status:  models.OpportunityStatusSuggested,
	})
}
