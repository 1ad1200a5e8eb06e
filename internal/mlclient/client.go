// Package mlclient talks to the external model service that hosts entity
// recognition, abstractive summarization and OCR.
package mlclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/metamuse/internal/extract"
	"github.com/hyperjump/metamuse/internal/nlp"
)

// Client is a reusable HTTP client for the model service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var (
	_ nlp.EntityRecognizer = (*Client)(nil)
	_ nlp.Summarizer       = (*Client)(nil)
	_ extract.OCR          = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient creates a client for the service at endpoint. apiKey may be empty.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Recognize returns the entities the service finds in text.
func (c *Client) Recognize(ctx context.Context, text string) ([]nlp.EntityMention, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("recognize: %w", nlp.ErrMalformedInput)
	}
	var resp struct {
		Entities []entity `json:"entities"`
	}
	if err := c.post(ctx, "/entities", map[string]any{"text": text}, &resp); err != nil {
		return nil, err
	}
	out := make([]nlp.EntityMention, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		out = append(out, nlp.EntityMention{Text: e.Text, Label: nlp.ParseLabel(e.Label)})
	}
	return out, nil
}

// Summarize requests an abstractive summary between minLength and maxLength tokens.
func (c *Client) Summarize(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("summarize: %w", nlp.ErrMalformedInput)
	}
	payload := map[string]any{
		"text":       text,
		"min_length": minLength,
		"max_length": maxLength,
	}
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// RecognizeText sends a page image or scanned PDF for OCR.
func (c *Client) RecognizeText(ctx context.Context, content []byte, mimeType string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("ocr: %w", nlp.ErrMalformedInput)
	}
	payload := map[string]any{
		"content":   base64.StdEncoding.EncodeToString(content),
		"mime_type": mimeType,
	}
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/ocr", payload, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	op := strings.TrimPrefix(path, "/")
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusRequestEntityTooLarge ||
		resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: status %s: %w", op, resp.Status, nlp.ErrMalformedInput)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &nlp.ModelError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(msg)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &nlp.ModelError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
