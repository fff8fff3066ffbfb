package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interview-backend/internal/shared/metrics"
)

// ErrUnavailable is returned on transport failure or a non-2xx status.
var ErrUnavailable = errors.New("generation service unavailable")

// ErrMalformed is returned when the response envelope carries no text.
var ErrMalformed = errors.New("generation service response malformed")

// Generator abstracts the external text-generation service. It returns the
// raw generated text; callers own prompt content and output parsing.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxOutputTokens int) (string, error)
}

// Client calls the Gemini generateContent REST endpoint. No retries here;
// retry policy belongs to the caller.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini client.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"response_mime_type"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate posts a prompt and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float32, maxOutputTokens int) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      temperature,
			MaxOutputTokens:  maxOutputTokens,
			ResponseMimeType: "application/json",
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveLLMLatencyMs(float64(time.Since(started)) / float64(time.Millisecond))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, truncate(string(body), 512))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrMalformed, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidate text", ErrMalformed)
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty candidate text", ErrMalformed)
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Generator = (*Client)(nil)
