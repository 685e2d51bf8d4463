// Package fetch downloads files over HTTP with retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/afero"
)

// Client downloads remote files to the filesystem.
type Client struct {
	http *retryablehttp.Client
	fs   afero.Fs
}

// NewClient creates a Client with sane retry defaults and a pooled
// transport.
func NewClient(fs afero.Fs) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &Client{http: rc, fs: fs}
}

// Download fetches url into dest, replacing any existing file. The body
// streams to a temporary path first so a failed transfer never leaves a
// truncated dest behind.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("fetch: building request for %s: %w", url, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch: %s: unexpected status %s", url, resp.Status)
	}

	tmp := dest + ".download"
	f, err := c.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("fetch: creating %s: %w", tmp, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("fetch: writing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("fetch: closing %s: %w", tmp, err)
	}

	if err := c.fs.Rename(tmp, dest); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("fetch: replacing %s: %w", dest, err)
	}
	return nil
}
