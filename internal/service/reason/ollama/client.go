// Package ollama implements reason.Completer against an Ollama-compatible
// generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrBody = 4096

// Client is a synchronous client for the generate endpoint. The model is
// fixed at construction; the pipeline and the phrase bank each hold their
// own client.
type Client struct {
	url    string
	model  string
	client *http.Client
}

// New creates a client for the given endpoint URL and model.
func New(url, model string, timeout time.Duration) *Client {
	return &Client{
		url:   url,
		model: model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends one non-streaming generate request and returns the raw
// completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("reasoner marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		lb := io.LimitReader(resp.Body, maxErrBody)
		b, _ := io.ReadAll(lb)
		return "", fmt.Errorf("reasoner %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("reasoner decode: %w", err)
	}
	return out.Response, nil
}
