// Package asr turns captured PCM into text via a whisper-server HTTP endpoint.
package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable marks transcription failures caused by an unreachable or
// unhealthy whisper server.
var ErrUnavailable = errors.New("transcription backend unavailable")

// Client is a whisper-server inference client.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient constructs a client for the whisper-server inference endpoint.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type inferenceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Transcribe posts PCM as WAV and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	if _, err := part.Write(encodePCM16WAV(pcm, 16000, 1)); err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	if err := form.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("%w: inference returned %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("inference error: %s", payload.Error)
	}
	return strings.TrimSpace(payload.Text), nil
}

// Ping reports whether the whisper server answers requests at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	resp.Body.Close()
	return nil
}

// classifyTransportError folds connection and deadline failures into
// ErrUnavailable so callers can degrade instead of aborting.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out: %v", ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: request timed out: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
