package services

import (
	"strings"

	"kingscanvas/internal/models"
)

// ineligibleStepStatuses are lifecycle states that must not receive
// opportunities: ghosts are never persisted, suggested steps await a user
// decision, rejected steps are dead.
var ineligibleStepStatuses = map[string]bool{
	models.StepStatusGhost:     true,
	models.StepStatusSuggested: true,
	models.StepStatusRejected:  true,
}

// IsStepEligible decides whether a step may have opportunities generated or
// fetched for it. Pure and total: a nil step, a step with no persisted
// identifier, or a step in an excluded status is ineligible; everything else
// (including a step with no status at all) is eligible.
func IsStepEligible(step *models.Step) bool {
	if step == nil {
		return false
	}
	if step.CanonicalID() == "" {
		return false
	}
	if ineligibleStepStatuses[strings.ToLower(strings.TrimSpace(step.Status))] {
		return false
	}
	return true
}
