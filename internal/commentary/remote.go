package commentary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a remote call when none is configured.
const DefaultTimeout = 5 * time.Second

// Request is the commentary wire request.
type Request struct {
	Score int `json:"score"`
}

// Response is the commentary wire response. Exactly one field is set.
type Response struct {
	Commentary string `json:"commentary,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Remote asks an HTTP endpoint for commentary.
type Remote struct {
	url    string
	client *http.Client
}

// NewRemote creates a client for url.
func NewRemote(url string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Remote{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Summarize POSTs {"score": n} and returns the commentary field.
func (r *Remote) Summarize(ctx context.Context, score int) (string, error) {
	body, err := json.Marshal(Request{Score: score})
	if err != nil {
		return "", fmt.Errorf("commentary: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("commentary: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("commentary: request: %w", err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("commentary: decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode/100 != 2 {
		if out.Error != "" {
			return "", fmt.Errorf("commentary: server error %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("commentary: unexpected status %d", resp.StatusCode)
	}
	if out.Commentary == "" {
		return "", errors.New("commentary: empty response")
	}
	return out.Commentary, nil
}
