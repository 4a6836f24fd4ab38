package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"kingscanvas/internal/models"
)

// fakeCompletionClient returns canned text or a canned error.
type fakeCompletionClient struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func TestBuildOpportunityPrompt(t *testing.T) {
	prompt := BuildOpportunityPrompt("Learn Rust", "Become a systems engineer", "before-graduation")

	for _, want := range []string{
		`"Learn Rust"`,
		`"Become a systems engineer"`,
		"before-graduation",
		"edge_simulated",
		"independent",
		"ONLY the JSON array",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildOpportunityPrompt_OptionalContext(t *testing.T) {
	prompt := BuildOpportunityPrompt("Learn Rust", "", "")

	if strings.Contains(prompt, "long-term intention") {
		t.Error("Expected no intention line without an intention title")
	}
	if strings.Contains(prompt, "Time horizon") {
		t.Error("Expected no bucket line without a bucket")
	}
}

func TestGenerateDrafts_EmptyResponseYieldsNoDraftsNoError(t *testing.T) {
	service := NewSimulationService(&fakeCompletionClient{text: "   "})

	drafts, err := service.GenerateDrafts(context.Background(), "Learn Rust", "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if drafts == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(drafts) != 0 {
		t.Errorf("Expected 0 drafts, got %d", len(drafts))
	}
}

func TestGenerateDrafts_UnparsableTextReturnsParseError(t *testing.T) {
	service := NewSimulationService(&fakeCompletionClient{text: "Sure! Here are some ideas:"})

	_, err := service.GenerateDrafts(context.Background(), "Learn Rust", "", "")
	if err == nil {
		t.Fatal("Expected error for unparsable text")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if err.Error() != "Failed to parse simulate-opportunities response" {
		t.Errorf("Unexpected parse error message: %q", err.Error())
	}
}

func TestGenerateDrafts_UpstreamErrorPropagates(t *testing.T) {
	upstream := &UpstreamError{StatusCode: 429, Message: "rate limited"}
	service := NewSimulationService(&fakeCompletionClient{err: upstream})

	_, err := service.GenerateDrafts(context.Background(), "Learn Rust", "", "")
	if !errors.Is(err, upstream) {
		t.Fatalf("Expected the upstream error unchanged, got %v", err)
	}
}

func TestGenerateDrafts_DropsMalformedItems(t *testing.T) {
	// Second item has no title, third has an unknown form. Only the first and
	// fourth survive.
	service := NewSimulationService(&fakeCompletionClient{text: `[
		{"title": "Join a hackathon", "summary": "Build something in a weekend.", "source": "edge_simulated", "form": "intensive", "focus": ["capability"], "status": "suggested"},
		{"summary": "No title here.", "source": "edge_simulated", "form": "intensive", "focus": ["capability"], "status": "suggested"},
		{"title": "Weird one", "summary": "Bad form.", "source": "edge_simulated", "form": "marathon", "focus": ["capability"], "status": "suggested"},
		{"title": "Write a blog post", "summary": "Share what you learned.", "source": "independent", "form": "short_form", "focus": ["credibility"], "status": "suggested"}
	]`})

	drafts, err := service.GenerateDrafts(context.Background(), "Learn Rust", "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("Expected 2 drafts, got %d", len(drafts))
	}
	if drafts[0].Title != "Join a hackathon" || drafts[1].Title != "Write a blog post" {
		t.Errorf("Unexpected surviving drafts: %v", drafts)
	}
}

func TestNormalizeDraft(t *testing.T) {
	valid := func(overrides map[string]interface{}) map[string]interface{} {
		raw := map[string]interface{}{
			"title":   "Join a hackathon",
			"summary": "Build something in a weekend.",
			"source":  "edge_simulated",
			"form":    "intensive",
			"focus":   []interface{}{"capability"},
			"status":  "suggested",
		}
		for k, v := range overrides {
			raw[k] = v
		}
		return raw
	}

	tests := []struct {
		name     string
		raw      map[string]interface{}
		rejected bool
	}{
		{"valid", valid(nil), false},
		{"missing title", valid(map[string]interface{}{"title": nil}), true},
		{"blank title", valid(map[string]interface{}{"title": "   "}), true},
		{"non-string title", valid(map[string]interface{}{"title": 42.0}), true},
		{"missing summary", valid(map[string]interface{}{"summary": ""}), true},
		{"unknown source", valid(map[string]interface{}{"source": "oracle"}), true},
		{"unknown form", valid(map[string]interface{}{"form": "marathon"}), true},
		{"missing focus", valid(map[string]interface{}{"focus": nil}), true},
		{"all-invalid focus", valid(map[string]interface{}{"focus": []interface{}{"vibes"}}), true},
		{"uppercase source accepted", valid(map[string]interface{}{"source": "EDGE_SIMULATED"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := normalizeDraft(tt.raw)
			if tt.rejected && draft != nil {
				t.Errorf("Expected rejection, got %+v", draft)
			}
			if !tt.rejected && draft == nil {
				t.Error("Expected a draft, got nil")
			}
		})
	}
}

func TestNormalizeDraft_InvalidStatusDefaultsToSuggested(t *testing.T) {
	draft := normalizeDraft(map[string]interface{}{
		"title":   "Join a hackathon",
		"summary": "Build something in a weekend.",
		"source":  "edge_simulated",
		"form":    "intensive",
		"focus":   []interface{}{"capability"},
		"status":  "pending",
	})
	if draft == nil {
		t.Fatal("Expected a draft, got nil")
	}
	if draft.Status != models.OpportunityStatusSuggested {
		t.Errorf("Expected status 'suggested', got %q", draft.Status)
	}
}

func TestNormalizeDraft_Idempotent(t *testing.T) {
	raw := map[string]interface{}{
		"title":   "  Join a hackathon  ",
		"summary": "Build something in a weekend.",
		"source":  "Edge_Simulated",
		"form":    "INTENSIVE",
		"focus":   []interface{}{"Capability", "capability", "capital"},
		"status":  "suggested",
	}

	first := normalizeDraft(raw)
	if first == nil {
		t.Fatal("Expected a draft, got nil")
	}

	// Re-normalizing an already-normalized draft changes nothing.
	again := normalizeDraft(map[string]interface{}{
		"title":   first.Title,
		"summary": first.Summary,
		"source":  first.Source,
		"form":    first.Form,
		"focus":   []interface{}{first.Focus[0], first.Focus[1]},
		"status":  first.Status,
	})
	if again == nil {
		t.Fatal("Expected a draft on second pass, got nil")
	}
	if !reflect.DeepEqual(first, again) {
		t.Errorf("Normalization not idempotent: %+v vs %+v", first, again)
	}
}

func TestNormalizeFocus(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected []string
	}{
		{"single string", "capability", []string{"capability"}},
		{"array", []interface{}{"capability", "capital"}, []string{"capability", "capital"}},
		{"filters unknown values", []interface{}{"capability", "unknown"}, []string{"capability"}},
		{"deduplicates", []interface{}{"capital", "Capital", "capital"}, []string{"capital"}},
		{"case and whitespace", []interface{}{" Credibility "}, []string{"credibility"}},
		{"all invalid", []interface{}{"vibes"}, nil},
		{"wrong type", 7.0, nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeFocus(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
