package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deepsift/deepsift/internal/httpc"
	"github.com/deepsift/deepsift/pkg/scoring"
)

// Client is the HTTP classifier provider.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a new classifier client.
func NewClient(opts ...Option) *Client {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "classifier.client"),
	}
}

type classifyPayload struct {
	Model  string   `json:"model"`
	Images []string `json:"images"`
}

type classifyResponse struct {
	Results json.RawMessage `json:"results"`
	Model   string          `json:"model"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Classify scores a batch of encoded images in one call.
func (c *Client) Classify(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	if len(req.Images) == 0 {
		return nil, ErrEmptyBatch
	}

	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}

	payload := classifyPayload{
		Model:  model,
		Images: make([]string, len(req.Images)),
	}
	for i, img := range req.Images {
		payload.Images[i] = base64.StdEncoding.EncodeToString(img)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("classifier: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("classifier: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	results, err := decodeResults(result.Results, len(req.Images))
	if err != nil {
		return nil, err
	}

	latency := time.Since(start).Milliseconds()
	c.logger.Debug("classified batch",
		"images", len(req.Images), "model", model, "latency_ms", latency)

	return &BatchResponse{
		Results:   results,
		Model:     result.Model,
		LatencyMs: latency,
	}, nil
}

// decodeResults normalizes the results field to a list of lists. Some
// classifier builds return a bare label/score list for a batch of one;
// that shape is wrapped so callers always see one list per image.
func decodeResults(raw json.RawMessage, want int) ([][]scoring.LabelScore, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing results", ErrBadResponse)
	}

	var nested [][]scoring.LabelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) != want {
			return nil, fmt.Errorf("%w: %d results for %d images", ErrBadResponse, len(nested), want)
		}
		return nested, nil
	}

	var flat []scoring.LabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if want != 1 {
		return nil, fmt.Errorf("%w: flat result list for %d images", ErrBadResponse, want)
	}
	return [][]scoring.LabelScore{flat}, nil
}

// parseError extracts a structured error from a non-200 response.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp errorResponse
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// Health checks the classifier's readiness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("classifier: build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Close implements Provider. The shared transport has nothing to release.
func (c *Client) Close() error {
	return nil
}
