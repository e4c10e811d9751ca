package asr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, endpoint string, maxRetries int) *Client {
	t.Helper()

	client, err := NewClient(ClientConfig{
		Endpoint:      endpoint,
		SampleRate:    16000,
		Timeout:       5 * time.Second,
		MaxRetries:    maxRetries,
		MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestClientInfer(t *testing.T) {
	var gotLanguage, gotPrompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotPrompt = r.FormValue("prompt_tokens")

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing audio file: %v", err)
		} else {
			file.Close()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"text": "hello world",
			"segments": []map[string]any{
				{
					"text":     "hello world",
					"start_ms": 0,
					"end_ms":   3000,
					"tokens":   []int32{10, 11, 12},
				},
			},
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)

	samples := make([]float32, 16000)
	result, err := client.Infer(context.Background(), samples, []Token{1, 2}, Options{
		Language:  "en",
		MaxTokens: 32,
	})
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}

	if gotLanguage != "en" {
		t.Errorf("expected language field 'en', got %q", gotLanguage)
	}
	if gotPrompt != "[1,2]" {
		t.Errorf("expected prompt_tokens '[1,2]', got %q", gotPrompt)
	}

	if len(result.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(result.Segments))
	}
	seg := result.Segments[0]
	if seg.Text != "hello world" {
		t.Errorf("expected segment text 'hello world', got %q", seg.Text)
	}
	if seg.EndMs != 3000 {
		t.Errorf("expected end_ms 3000, got %d", seg.EndMs)
	}
	if len(seg.Tokens) != 3 || seg.Tokens[0] != 10 {
		t.Errorf("expected tokens [10 11 12], got %v", seg.Tokens)
	}
}

func TestClientInferFlatTextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "just text"})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)

	result, err := client.Infer(context.Background(), make([]float32, 100), nil, Options{Language: "en"})
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}

	if len(result.Segments) != 1 || result.Segments[0].Text != "just text" {
		t.Errorf("expected synthesized segment from flat text, got %+v", result.Segments)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "temporary failure", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "recovered"})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)

	result, err := client.Infer(context.Background(), make([]float32, 100), nil, Options{Language: "en"})
	if err != nil {
		t.Fatalf("Infer failed after retry: %v", err)
	}

	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
	if result.Segments[0].Text != "recovered" {
		t.Errorf("expected 'recovered', got %q", result.Segments[0].Text)
	}

	stats := client.GetStats()
	if stats.TotalRetries != 1 {
		t.Errorf("expected 1 recorded retry, got %d", stats.TotalRetries)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3)

	_, err := client.Infer(context.Background(), make([]float32, 100), nil, Options{Language: "en"})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}

	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt for non-retryable error, got %d", attempts.Load())
	}
}

func TestClientEmptyWindow(t *testing.T) {
	client := testClient(t, "http://localhost:1/inference", 0)

	result, err := client.Infer(context.Background(), nil, nil, Options{})
	if err != nil {
		t.Fatalf("expected empty result for empty window, got error: %v", err)
	}
	if len(result.Segments) != 0 {
		t.Errorf("expected no segments, got %d", len(result.Segments))
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{SampleRate: 16000}); err == nil {
		t.Error("expected error for empty endpoint")
	}

	if _, err := NewClient(ClientConfig{Endpoint: "http://x/inference"}); err == nil {
		t.Error("expected error for missing sample rate")
	}
}

func TestMockEngine(t *testing.T) {
	mock := NewMock()
	mock.EnqueueText("hello", 0, 100, 1, 2, 3)

	result, err := mock.Infer(context.Background(), make([]float32, 10), []Token{7}, Options{Language: "en"})
	if err != nil {
		t.Fatalf("mock Infer failed: %v", err)
	}
	if len(result.Segments) != 1 || result.Segments[0].Text != "hello" {
		t.Fatalf("unexpected mock result: %+v", result)
	}

	// Exhausted queue yields an empty result, not an error.
	result, err = mock.Infer(context.Background(), nil, nil, Options{})
	if err != nil {
		t.Fatalf("mock Infer failed on empty queue: %v", err)
	}
	if len(result.Segments) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}

	calls := mock.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(calls))
	}
	if calls[0].SampleCount != 10 {
		t.Errorf("expected 10 samples recorded, got %d", calls[0].SampleCount)
	}
	if len(calls[0].Prompt) != 1 || calls[0].Prompt[0] != 7 {
		t.Errorf("expected prompt [7], got %v", calls[0].Prompt)
	}
}
