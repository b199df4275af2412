// Package client is the Go client of the inference service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emoberta/emoberta/pkg/api"
)

// Client talks to one emoberta server.
type Client struct {
	baseURL string
	c       *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		c:       &http.Client{Timeout: 60 * time.Second},
	}
}

// Classify sends one utterance (with optional context) for classification.
func (cl *Client) Classify(ctx context.Context, req api.ClassifyRequest) (*api.Prediction, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.baseURL+"/api/classify", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := cl.c.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classify %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out api.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("classify decode: %w", err)
	}
	return &out, nil
}

// Health fetches the server's model metadata.
func (cl *Client) Health(ctx context.Context) (*api.Health, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.baseURL+"/api/healthz", nil)
	if err != nil {
		return nil, err
	}

	resp, err := cl.c.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health %s", resp.Status)
	}

	var out api.Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("health decode: %w", err)
	}
	return &out, nil
}
