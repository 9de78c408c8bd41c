package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// uploadFileName is the file name sent with multipart uploads.
const uploadFileName = "hypetorch_latest_output.json"

// HTTPClient wraps http.Client with timeout and the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// entityPath renders the URL path for an entity, spaces as underscores.
func entityPath(name, suffix string) string {
	return "/api/entities/" + url.PathEscape(strings.ReplaceAll(name, " ", "_")) + suffix
}

// GetJSON fetches path and decodes a 200 response into v.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return decodeResponse(resp, path, v)
}

// Upload posts raw as the "file" part of a multipart form.
func (c *HTTPClient) Upload(ctx context.Context, raw []byte) (UploadAck, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", uploadFileName)
	if err != nil {
		return UploadAck{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return UploadAck{}, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadAck{}, fmt.Errorf("failed to close form: %w", err)
	}

	const path = "/api/upload_json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return UploadAck{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return UploadAck{}, fmt.Errorf("POST %s: %w", path, err)
	}
	var ack UploadAck
	if err := decodeResponse(resp, path, &ack); err != nil {
		return UploadAck{}, err
	}
	return ack, nil
}

// decodeResponse reads and closes the response body.
func decodeResponse(resp *http.Response, path string, v any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d: %s", ErrUnexpected, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnexpected, path, err)
	}
	return nil
}
