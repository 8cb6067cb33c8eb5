package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// RemoteDecoder posts a captured image to an external QR-decoding service and
// returns the symbol text it found. Timeouts come from the caller's context;
// a timed-out decode is a retryable failure, never a success.
type RemoteDecoder struct {
	URL       string
	ImagePath string
	Client    *http.Client
}

type remoteDecodeResponse struct {
	Found bool   `json:"found"`
	Text  string `json:"text"`
}

func (r RemoteDecoder) Capture(ctx context.Context) (string, error) {
	if r.ImagePath == "" {
		return "", ErrCancelled
	}
	image, err := os.ReadFile(r.ImagePath)
	if err != nil {
		return "", fmt.Errorf("read captured image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("build decode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("decode service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("decode service returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded remoteDecodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode service response: %w", err)
	}
	if !decoded.Found || decoded.Text == "" {
		return "", ErrNoCodeFound
	}
	return decoded.Text, nil
}
