// Package recognizer is the client for the external plate-recognition HTTP
// service. Recognition itself is out of scope; this package only ships a
// JPEG frame out and brings plate text back.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// DefaultTimeout caps a recognition round-trip.
const DefaultTimeout = 10 * time.Second

// ErrNoPlate indicates the service answered but found no plate in the
// frame. Callers must not invoke the confirmation workflow on it.
var ErrNoPlate = errors.New("no plate recognized")

// Result is the recognition service response.
type Result struct {
	Success bool     `json:"success"`
	Plates  []string `json:"plates"`
	Error   string   `json:"error,omitempty"`
	// ROI is the plate bounding box in the submitted frame: [x, y, w, h].
	ROI []int `json:"roi,omitempty"`
}

// Client talks to the recognition service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a client for the service at baseURL (e.g.
// "http://127.0.0.1:5000"). timeout <= 0 selects DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Recognize uploads a JPEG frame and returns the recognition result.
// A reachable service that finds no plate yields ErrNoPlate.
func (c *Client) Recognize(ctx context.Context, jpeg []byte) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(jpeg); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", &body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling recognition service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recognition service returned %d: %s", resp.StatusCode, detail)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if !result.Success {
		if result.Error != "" {
			return nil, fmt.Errorf("recognition failed: %s", result.Error)
		}
		return nil, ErrNoPlate
	}
	if len(result.Plates) == 0 {
		return nil, ErrNoPlate
	}
	return &result, nil
}
