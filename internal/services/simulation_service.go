package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"kingscanvas/internal/models"
)

// simulateParseErrMsg is surfaced verbatim when the model returns unparsable
// text. Distinct from the empty-response soft case, which yields no drafts and
// no error.
const simulateParseErrMsg = "Failed to parse simulate-opportunities response"

// ParseError indicates the simulation model returned non-JSON or otherwise
// unparsable text. Never retried.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return simulateParseErrMsg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// SimulationService turns step context into validated opportunity drafts via
// the completion collaborator.
type SimulationService struct {
	completion CompletionClient
}

// NewSimulationService creates a new simulation service
func NewSimulationService(completion CompletionClient) *SimulationService {
	return &SimulationService{completion: completion}
}

// BuildOpportunityPrompt constructs the instruction sent to the simulation
// model. Deterministic pure string construction; intentionTitle and bucketID
// are optional context lines.
func BuildOpportunityPrompt(stepTitle, intentionTitle, bucketID string) string {
	var sb strings.Builder

	sb.WriteString("You generate real-world opportunities for a university student planning their future.\n\n")
	sb.WriteString(fmt.Sprintf("The student is working on this step: %q\n", strings.TrimSpace(stepTitle)))
	if intentionTitle != "" {
		sb.WriteString(fmt.Sprintf("It belongs to their long-term intention: %q\n", intentionTitle))
	}
	if bucketID != "" {
		sb.WriteString(fmt.Sprintf("Time horizon: %s\n", bucketID))
	}

	sb.WriteString(`
Respond with a JSON array of 3 to 4 opportunity objects. Include 2-3 items with
source "edge_simulated" and exactly 1 item with source "independent".

Each object must have exactly these fields:
- "title": short actionable name
- "summary": one or two sentences describing the opportunity
- "source": "edge_simulated" or "independent"
- "form": one of "intensive", "evergreen", "short_form", "sustained"
- "focus": one or more of "capability", "capital", "credibility"
- "status": "suggested"

Respond with ONLY the JSON array. No markdown, no narration, no explanation.`)

	return sb.String()
}

// GenerateDrafts makes a single call to the completion collaborator and
// normalizes the result. An empty model response yields an empty slice with no
// error; unparsable text yields a *ParseError; malformed array elements are
// dropped silently.
func (s *SimulationService) GenerateDrafts(ctx context.Context, stepTitle, intentionTitle, bucketID string) ([]models.OpportunityDraft, error) {
	prompt := BuildOpportunityPrompt(stepTitle, intentionTitle, bucketID)

	start := time.Now()
	text, err := s.completion.Complete(ctx, prompt)
	ObserveSimulationLatency(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Println("⚠️ [SIMULATION] Model returned empty text, no drafts generated")
		return []models.OpportunityDraft{}, nil
	}

	var rawItems []map[string]interface{}
	if err := json.Unmarshal([]byte(text), &rawItems); err != nil {
		return nil, &ParseError{Cause: err}
	}

	drafts := make([]models.OpportunityDraft, 0, len(rawItems))
	for _, raw := range rawItems {
		if draft := normalizeDraft(raw); draft != nil {
			drafts = append(drafts, *draft)
		}
	}

	log.Printf("🎲 [SIMULATION] Normalized %d/%d drafts for step %q", len(drafts), len(rawItems), stepTitle)
	return drafts, nil
}

// normalizeDraft validates and coerces one raw model item into a typed draft.
// Returns nil when any required field fails validation; rejection is silent.
func normalizeDraft(raw map[string]interface{}) *models.OpportunityDraft {
	title := normalizeRequiredString(raw["title"])
	if title == "" {
		return nil
	}

	summary := normalizeRequiredString(raw["summary"])
	if summary == "" {
		return nil
	}

	source := normalizeToken(raw["source"])
	if !models.ValidOpportunitySources[source] {
		return nil
	}

	form := normalizeToken(raw["form"])
	if !models.ValidOpportunityForms[form] {
		return nil
	}

	focus := normalizeFocus(raw["focus"])
	if len(focus) == 0 {
		return nil
	}

	status := normalizeToken(raw["status"])
	if !models.ValidOpportunityStatuses[status] {
		status = models.OpportunityStatusSuggested
	}

	return &models.OpportunityDraft{
		Title:   title,
		Summary: summary,
		Source:  source,
		Form:    form,
		Focus:   focus,
		Status:  status,
	}
}

// normalizeRequiredString trims a raw string value; non-strings and blanks
// collapse to "".
func normalizeRequiredString(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// normalizeToken lowercases a vocabulary candidate.
func normalizeToken(v interface{}) string {
	return strings.ToLower(normalizeRequiredString(v))
}

// normalizeFocus accepts either a single string or an array of strings,
// normalizes each candidate, deduplicates, and keeps only valid focus values.
func normalizeFocus(v interface{}) []string {
	var candidates []string

	switch val := v.(type) {
	case string:
		candidates = []string{val}
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	default:
		return nil
	}

	seen := make(map[string]bool)
	var focus []string
	for _, candidate := range candidates {
		token := strings.ToLower(strings.TrimSpace(candidate))
		if models.ValidOpportunityFocuses[token] && !seen[token] {
			seen[token] = true
			focus = append(focus, token)
		}
	}

	return focus
}
