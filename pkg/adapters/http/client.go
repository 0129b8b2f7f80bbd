package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
)

// Client implements ports.LayoutRepository against a remote layoutkit server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the server at baseURL (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Save posts the layout. An empty name lets the server pick the default name.
func (c *Client) Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error) {
	body := map[string]any{"layout": layout}
	if name != "" {
		body["name"] = name
	}

	var resp struct {
		Filename string `json:"filename"`
		Path     string `json:"path"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/layouts", body, &resp); err != nil {
		return domain.SavedLayout{}, err
	}
	return domain.SavedLayout{Filename: resp.Filename, StorageLocation: resp.Path}, nil
}

// List fetches the layout summaries.
func (c *Client) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	var resp struct {
		Layouts []domain.LayoutSummary `json:"layouts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/layouts", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Layouts == nil {
		resp.Layouts = []domain.LayoutSummary{}
	}
	return resp.Layouts, nil
}

// Latest fetches the most recent layout, or nil when the server has none.
func (c *Client) Latest(ctx context.Context) (*domain.LayoutDocument, error) {
	var resp struct {
		Filename string          `json:"filename"`
		Layout   json.RawMessage `json:"layout"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/layouts/latest", nil, &resp); err != nil {
		return nil, err
	}
	if raw := bytes.TrimSpace(resp.Layout); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	doc := &domain.LayoutDocument{Filename: resp.Filename}
	if err := json.Unmarshal(resp.Layout, &doc.Layout); err != nil {
		return nil, fmt.Errorf("failed to decode latest layout: %w", err)
	}
	return doc, nil
}

// Get fetches one layout.
func (c *Client) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return nil, err
	}
	var doc domain.LayoutDocument
	if err := c.do(ctx, http.MethodGet, "/api/layouts/"+url.PathEscape(filename), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes one layout.
func (c *Client) Delete(ctx context.Context, filename string) error {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/layouts/"+url.PathEscape(filename), nil, nil)
}

// errorResponse covers every error body the server writes.
type errorResponse struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var e errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&e)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrLayoutNotFound
	case http.StatusUnprocessableEntity:
		if len(e.Errors) == 0 {
			return domain.NewValidationError("request", e.Message)
		}
		return &domain.ValidationError{Fields: e.Errors}
	}

	msg := e.Message
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
}
