package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAICompatClient_Complete(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected string
	}{
		{
			"flat string content",
			`{"choices":[{"message":{"content":"[{\"title\":\"x\"}]"}}]}`,
			`[{"title":"x"}]`,
		},
		{
			"segmented content with text objects",
			`{"choices":[{"message":{"content":[{"type":"text","text":"[1,"},{"type":"text","text":"2]"}]}}]}`,
			"[1,2]",
		},
		{
			"segmented content with bare strings",
			`{"choices":[{"message":{"content":["[1,","2]"]}}]}`,
			"[1,2]",
		},
		{
			"no choices",
			`{"choices":[]}`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/chat/completions" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
					t.Errorf("Unexpected Authorization header %q", auth)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client := NewOpenAICompatClient(server.URL, "test-key", "test-model")
			text, err := client.Complete(context.Background(), "prompt")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if text != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, text)
			}
		})
	}
}

func TestOpenAICompatClient_NonOKStatusIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "test-key", "test-model")
	_, err := client.Complete(context.Background(), "prompt")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Expected *UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", upstream.StatusCode)
	}
}

func TestOpenAICompatClient_ErrorEnvelopeIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":{"message":"model not found"}}`))
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "test-key", "test-model")
	_, err := client.Complete(context.Background(), "prompt")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Expected *UpstreamError, got %v", err)
	}
	if upstream.Message != "model not found" {
		t.Errorf("Unexpected message %q", upstream.Message)
	}
}

func TestOpenAICompatClient_ConnectionFailureIsUpstreamError(t *testing.T) {
	client := NewOpenAICompatClient("http://127.0.0.1:1", "test-key", "test-model")
	_, err := client.Complete(context.Background(), "prompt")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Expected *UpstreamError, got %v", err)
	}
}
