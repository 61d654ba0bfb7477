package client

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

	"github.com/dmitrijs2005/notesync/internal/api"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/server/models"
)

// HTTPClient talks to the JSON API of the notes server.
type HTTPClient struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func NewHTTPClient(baseURL, accessToken string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Sync(ctx context.Context, notes []models.Note) ([]api.Result, error) {
	if notes == nil {
		notes = []models.Note{}
	}

	var resp api.SyncResponse
	if err := c.do(ctx, http.MethodPost, "/notes/sync", api.SyncRequest{Notes: notes}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *HTTPClient) List(ctx context.Context) ([]*models.Note, error) {
	var resp api.ListResponse
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (c *HTTPClient) Snapshot(ctx context.Context) (*api.SnapshotResponse, error) {
	var resp api.SnapshotResponse
	if err := c.do(ctx, http.MethodPost, "/notes/snapshot", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return mapStatus(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// mapStatus turns an error response into a sentinel, keeping the server's
// message when it sent one.
func mapStatus(resp *http.Response) error {
	var e api.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	msg := e.Error
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	case http.StatusNotImplemented:
		return common.ErrSnapshotsDisabled
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}
}
