// Package api uploads after-action reports to a report server.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cyborstrike/combatcore/pkg/core"
)

// ErrUnexpectedStatus wraps any non-200 response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client handles communication with the report server.
type Client struct {
	baseURL    string
	apiKey     string
	tag        string
	httpClient *http.Client
}

// New creates a new API client. A zero timeout means 30s.
func New(baseURL, apiKey, tag string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		tag:        tag,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Healthcheck checks if the report server is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// Upload sends a report file with its metadata as a multipart form. The
// client's tag is used when meta.Tag is empty.
func (c *Client) Upload(ctx context.Context, filePath string, meta core.UploadMetadata) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if meta.Tag == "" {
		meta.Tag = c.tag
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if cerr := writer.Close(); err == nil {
				err = cerr
			}
			pw.CloseWithError(err)
			errCh <- err
		}()

		fields := [][2]string{
			{"secret", c.apiKey},
			{"filename", filepath.Base(filePath)},
			{"sessionId", meta.SessionID},
			{"mapName", meta.MapName},
			{"objective", meta.Objective},
			{"outcome", meta.Outcome},
			{"duration", strconv.FormatFloat(meta.Duration, 'f', 3, 64)},
			{"score", strconv.Itoa(meta.Score)},
			{"tag", meta.Tag},
		}
		for _, f := range fields {
			if err = writer.WriteField(f[0], f[1]); err != nil {
				return
			}
		}

		var part io.Writer
		part, err = writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			err = fmt.Errorf("failed to create form file: %w", err)
			return
		}
		if _, err = io.Copy(part, file); err != nil {
			err = fmt.Errorf("failed to copy file: %w", err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/reports/add", pr)
	if err != nil {
		pr.Close()
		<-errCh
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pr.Close()
		<-errCh
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return writeErr
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
