// pkg/download/download.go - HTTP(S) artifact fetching for hostprep.

package download

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/windowsadmins/hostprep/pkg/logging"
	"github.com/windowsadmins/hostprep/pkg/retry"
)

// Timeout bounds a single download attempt end to end.
const Timeout = 10 * time.Minute

// TransferError reports a failed artifact download.
type TransferError struct {
	URL string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Client fetches installer artifacts over HTTP(S). TLS 1.2 is the floor for
// every connection; several artifact hosts reject older handshakes.
type Client struct {
	http  *http.Client
	retry retry.Config
}

// NewClient returns a Client with the default transport and retry schedule.
func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Timeout: Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
				Proxy:           http.ProxyFromEnvironment,
			},
		},
		retry: retry.Config{MaxRetries: 3, InitialInterval: time.Second, Multiplier: 2.0},
	}
}

// Fetch downloads url to dest, blocking until complete or failed.
// Transport and status failures come back as *TransferError.
func (c *Client) Fetch(ctx context.Context, url, dest string) error {
	if url == "" {
		return &TransferError{URL: url, Err: fmt.Errorf("url cannot be empty")}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory structure: %w", err)
	}

	err := retry.Retry(c.retry, func() error {
		logging.Info("Starting download", "url", url, "destination", dest)

		out, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("failed to open destination file: %w", err)
		}
		defer out.Close()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to prepare HTTP request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("failed to perform HTTP request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("unexpected HTTP status code: %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				// Client errors won't heal on retry; the URL is wrong.
				return retry.Permanent(statusErr)
			}
			return statusErr
		}

		if _, err = io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("failed to write downloaded data: %w", err)
		}

		logging.Info("Download completed successfully", "file", dest)
		return nil
	})
	if err != nil {
		return &TransferError{URL: url, Err: err}
	}
	return nil
}
