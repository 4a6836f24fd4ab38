package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// CompletionClient is the text-completion collaborator. Implementations take a
// prompt and return the model's raw text payload.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UpstreamError wraps a failure of the completion collaborator itself
// (transport error, auth, rate limit). Maps to 503 at the HTTP boundary.
type UpstreamError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("simulation model error [%d]: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("simulation model error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// OpenAICompatClient calls an OpenAI-compatible chat completions endpoint.
type OpenAICompatClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAICompatClient creates a completion client for the given endpoint.
func NewOpenAICompatClient(baseURL, apiKey, model string) *OpenAICompatClient {
	return &OpenAICompatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// chatCompletionResponse mirrors the subset of the chat completions payload we
// read. Content is kept raw because providers return either a flat string or a
// segmented content array.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single chat completion request and returns the text payload.
func (c *OpenAICompatClient) Complete(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
		"stream":      false,
		"temperature": 0.7,
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ [SIMULATION] Model endpoint returned %d: %s", resp.StatusCode, truncateForLog(string(body), 200))
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    truncateForLog(string(body), 200),
		}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &UpstreamError{Message: "malformed completion envelope", Cause: err}
	}
	if parsed.Error != nil {
		return "", &UpstreamError{Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}

	return extractTextContent(parsed.Choices[0].Message.Content), nil
}

// extractTextContent handles both a flat string content and a segmented
// content structure, concatenating all string/text segments.
func extractTextContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var flat string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(raw, &segments); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, seg := range segments {
		var str string
		if err := json.Unmarshal(seg, &str); err == nil {
			sb.WriteString(str)
			continue
		}
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(seg, &obj); err == nil {
			sb.WriteString(obj.Text)
		}
	}
	return sb.String()
}

// truncateForLog truncates a string to maxLen characters
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
