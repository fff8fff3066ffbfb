package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient("test-key", "models/test-model", srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestGenerateReturnsCandidateText(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"generated output"}]}}]}`))
	})

	text, err := client.Generate(context.Background(), "the prompt", 0.2, 8192)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "generated output" {
		t.Fatalf("expected candidate text, got %q", text)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 || gotBody.Contents[0].Parts[0].Text != "the prompt" {
		t.Fatalf("prompt not carried in request: %+v", gotBody)
	}
	if gotBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("expected json response mime type, got %q", gotBody.GenerationConfig.ResponseMimeType)
	}
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Generate(context.Background(), "p", 0, 100)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestGenerateMissingText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Generate(context.Background(), "p", 0, 100)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestGenerateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client, err := NewClient("test-key", "models/test-model", srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Generate(context.Background(), "p", 0, 100)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on transport failure, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "models/m", "http://x", time.Second); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewClient("key", "", "http://x", time.Second); err == nil {
		t.Fatal("expected error for missing model")
	}
}
