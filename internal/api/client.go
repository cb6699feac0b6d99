// internal/api/client.go
package api

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

	"github.com/mapmarks/overlay/pkg/core"
)

// RemoteError is a request the annotation server answered with an error
// status.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// RemoteMessage returns the message the server gave, if any.
func (e *RemoteError) RemoteMessage() string {
	return e.Message
}

// Client handles communication with the annotation server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client. A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Timeout returns the per-request limit; zero means unbounded.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Healthcheck checks if the annotation server is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Create adds a marker.
func (c *Client) Create(ctx context.Context, req core.CreateMarkerRequest) error {
	return c.do(ctx, http.MethodPost, "/add_marker", req, nil)
}

// Get reads one marker.
func (c *Client) Get(ctx context.Context, id string) (core.MarkerRecord, error) {
	var out core.MarkerResponse
	if err := c.do(ctx, http.MethodGet, "/get_marker/"+url.PathEscape(id), nil, &out); err != nil {
		return core.MarkerRecord{}, err
	}
	if out.Marker == nil {
		return core.MarkerRecord{}, fmt.Errorf("get marker %s: response has no marker", id)
	}
	return *out.Marker, nil
}

func (c *Client) Update(ctx context.Context, req core.UpdateMarkerRequest) error {
	return c.do(ctx, http.MethodPost, "/edit_marker", req, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/delete_marker", core.DeleteMarkerRequest{MarkerID: id}, nil)
}

func (c *Client) AddMemory(ctx context.Context, id, text string) error {
	return c.do(ctx, http.MethodPost, "/add_memory", core.AddMemoryRequest{MarkerID: id, MemoryText: text}, nil)
}

// GetMemory reads a marker's memory. The server arms the LED trigger as a
// side effect.
func (c *Client) GetMemory(ctx context.Context, id string) (string, error) {
	var out core.MemoryResponse
	if err := c.do(ctx, http.MethodGet, "/get_memory/"+url.PathEscape(id), nil, &out); err != nil {
		return "", err
	}
	return out.Memory, nil
}

// ReportVisible posts the markers inside the viewport.
func (c *Client) ReportVisible(ctx context.Context, markers []core.VisibleMarker) error {
	if markers == nil {
		markers = []core.VisibleMarker{}
	}
	return c.do(ctx, http.MethodPost, "/visible_markers", core.VisibilityReport{VisibleMarkers: markers}, nil)
}

// VisibleMarkers returns the last report the server received.
func (c *Client) VisibleMarkers(ctx context.Context) (core.VisibleMarkersResponse, error) {
	var out core.VisibleMarkersResponse
	err := c.do(ctx, http.MethodGet, "/api/visible_markers", nil, &out)
	return out, err
}

// MemoryTrigger takes the pending memory trigger, if any.
func (c *Client) MemoryTrigger(ctx context.Context) (core.MemoryTriggerResponse, error) {
	var out core.MemoryTriggerResponse
	err := c.do(ctx, http.MethodGet, "/api/memory_trigger", nil, &out)
	return out, err
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

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var status core.StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &RemoteError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !status.OK() {
		return &RemoteError{StatusCode: resp.StatusCode, Message: status.Message}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
