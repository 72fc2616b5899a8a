// Package download fetches JDK archives over HTTP with progress
// reporting, bounded retries on server errors, and atomic writes.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/jdk/pkg/utils"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultMaxAttempts    = 3
	retryBackoff          = 2 * time.Second
)

// Option is a functional option for configuring downloads
type Option func(*downloadConfig)

type downloadConfig struct {
	connectTimeout time.Duration
	readTimeout    time.Duration
	maxAttempts    int
	skipProgress   bool
}

// WithConnectTimeout overrides the connection establishment timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *downloadConfig) {
		c.connectTimeout = d
	}
}

// WithReadTimeout overrides the per-read inactivity timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(c *downloadConfig) {
		c.readTimeout = d
	}
}

// WithMaxAttempts sets how many times a request is attempted. Only
// server-side (5xx) failures are retried.
func WithMaxAttempts(n int) Option {
	return func(c *downloadConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithoutProgress disables progress tracking even if a task is provided
func WithoutProgress() Option {
	return func(c *downloadConfig) {
		c.skipProgress = true
	}
}

// createHTTPClient creates an HTTP client with redirect logging
func createHTTPClient(cfg *downloadConfig, t *task.Task) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: cfg.connectTimeout,
			}).DialContext,
			ResponseHeaderTimeout: cfg.readTimeout,
			Proxy:                 http.ProxyFromEnvironment,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (limit: 10)")
			}
			if t != nil && len(via) > 0 {
				from := via[len(via)-1].URL.String()
				to := req.URL.String()
				t.Debugf("Following redirect: %s -> %s", from, to)
			}
			return nil
		},
	}
}

// ProgressReader wraps an io.Reader and reports progress
type ProgressReader struct {
	io.Reader
	total      int64
	current    int64
	task       *task.Task
	lastUpdate time.Time
	startTime  time.Time
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.current += int64(n)

	// Update progress at most once per 100ms to avoid excessive updates
	now := time.Now()
	if now.Sub(pr.lastUpdate) >= 100*time.Millisecond {
		if pr.total > 0 {
			pr.task.SetProgress(int(pr.current), int(pr.total))

			elapsed := now.Sub(pr.startTime).Seconds()
			if elapsed > 0 {
				speed := float64(pr.current) / elapsed
				remaining := pr.total - pr.current
				eta := time.Duration(float64(remaining) / speed * float64(time.Second))

				pr.task.SetDescription(fmt.Sprintf("%s/%s (%.1f MB/s, ETA: %s)",
					utils.FormatBytes(pr.current),
					utils.FormatBytes(pr.total),
					speed/1024/1024,
					eta.Round(time.Second)))
			}
		} else {
			pr.task.SetDescription(fmt.Sprintf("Downloaded %s", utils.FormatBytes(pr.current)))
		}
		pr.lastUpdate = now
	}

	return n, err
}

// retryableError marks a failure worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Download fetches url into dest. The file is written to a temporary
// sibling and renamed into place only after the body has been fully
// consumed, so dest never holds a partial download. Server errors (5xx)
// are retried a bounded number of times; client errors and cancellation
// are not.
func Download(ctx context.Context, url, dest string, t *task.Task, opts ...Option) error {
	config := &downloadConfig{
		connectTimeout: defaultConnectTimeout,
		readTimeout:    defaultReadTimeout,
		maxAttempts:    defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(config)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= config.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := downloadOnce(ctx, url, dest, t, config)
		if err == nil {
			return nil
		}
		lastErr = err

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return err
		}
		if attempt < config.maxAttempts {
			if t != nil {
				t.Warnf("Download attempt %d/%d failed: %v", attempt, config.maxAttempts, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return fmt.Errorf("download failed after %d attempts: %w", config.maxAttempts, lastErr)
}

func downloadOnce(ctx context.Context, url, dest string, t *task.Task, config *downloadConfig) error {
	if t != nil {
		t.SetDescription(fmt.Sprintf("Downloading %s", utils.ShortenURL(url)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := createHTTPClient(config, t)
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &retryableError{fmt.Errorf("request to %s failed: %w", utils.ShortenURL(url), err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return &retryableError{fmt.Errorf("server error from %s: status %d", utils.ShortenURL(url), resp.StatusCode)}
	default:
		return fmt.Errorf("failed to download %s: status %d", utils.ShortenURL(url), resp.StatusCode)
	}

	tempFile := dest + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temp file %s: %w", tempFile, err)
	}
	defer func() {
		out.Close()
		// Clean up temp file if it still exists (not renamed)
		if _, err := os.Stat(tempFile); err == nil {
			os.Remove(tempFile)
		}
	}()

	var reader io.Reader = resp.Body
	if t != nil && !config.skipProgress {
		reader = &ProgressReader{
			Reader:     resp.Body,
			total:      resp.ContentLength,
			task:       t,
			startTime:  time.Now(),
			lastUpdate: time.Now(),
		}
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &retryableError{fmt.Errorf("failed to read response body: %w", err)}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize temp file: %w", err)
	}

	if err := os.Rename(tempFile, dest); err != nil {
		return fmt.Errorf("failed to move temp file to destination: %w", err)
	}

	if t != nil {
		t.Infof("Downloaded %s (%s)", filepath.Base(dest), utils.FormatBytes(written))
	}
	return nil
}
