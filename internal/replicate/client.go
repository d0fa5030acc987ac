// Package replicate is a minimal client for the Replicate predictions
// API, used by the image generation connector. It creates a prediction,
// polls it to a terminal state and exposes the output file URLs.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the Replicate API base URL.
const DefaultBaseURL = "https://api.replicate.com/v1"

// DefaultPollInterval is how often Wait polls a pending prediction.
const DefaultPollInterval = 2 * time.Second

// Prediction statuses.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// Prediction is a Replicate prediction resource.
type Prediction struct {
	ID     string          `json:"id"`
	Model  string          `json:"model"`
	Status string          `json:"status"`
	Input  map[string]any  `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
	Logs   string          `json:"logs,omitempty"`
}

// Terminal returns true once the prediction has finished, successfully
// or not.
func (p *Prediction) Terminal() bool {
	switch p.Status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// OutputURLs extracts the output file URLs. Models return either a single
// URL string or a list of them.
func (p *Prediction) OutputURLs() []string {
	if len(p.Output) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return []string{single}
	}

	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil {
		return list
	}

	return nil
}

// APIError is a non-2xx response from the Replicate API.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("replicate api error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("replicate api error (status %d)", e.StatusCode)
}

// Client talks to the Replicate API. The API token is threaded in
// explicitly, mirroring the OAuth client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientConfig configures the Replicate client.
type ClientConfig struct {
	// APIToken authenticates requests. Required.
	APIToken string

	// BaseURL overrides the API base URL, mainly for tests.
	BaseURL string

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// NewClient creates a Replicate client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      cfg.APIToken,
	}
}

// CreatePrediction starts a prediction for the given model
// ("owner/name") with the given input and returns it in its initial
// (usually "starting") state.
func (c *Client) CreatePrediction(ctx context.Context, model string, input map[string]any) (*Prediction, error) {
	payload, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)
	prediction, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}

	slog.Debug("created prediction",
		"id", prediction.ID,
		"model", model,
		"status", prediction.Status,
	)
	return prediction, nil
}

// GetPrediction fetches the current state of a prediction.
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	url := fmt.Sprintf("%s/predictions/%s", c.baseURL, id)
	return c.do(ctx, http.MethodGet, url, nil)
}

// Wait polls the prediction until it reaches a terminal state or the
// context is cancelled. A failed or canceled prediction is returned as
// an error carrying the model-reported message.
func (c *Client) Wait(ctx context.Context, id string, interval time.Duration) (*Prediction, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			prediction, err := c.GetPrediction(ctx, id)
			if err != nil {
				return nil, err
			}
			if !prediction.Terminal() {
				continue
			}

			if prediction.Status != StatusSucceeded {
				if prediction.Error != "" {
					return nil, fmt.Errorf("prediction %s %s: %s", id, prediction.Status, prediction.Error)
				}
				return nil, fmt.Errorf("prediction %s %s", id, prediction.Status)
			}
			return prediction, nil
		}
	}
}

// do performs an authenticated API request and decodes the prediction
// body.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) (*Prediction, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read replicate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if jsonErr := json.Unmarshal(data, &detail); jsonErr == nil {
			apiErr.Detail = detail.Detail
		}
		return nil, apiErr
	}

	var prediction Prediction
	if err := json.Unmarshal(data, &prediction); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}

	return &prediction, nil
}
