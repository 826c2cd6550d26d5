// Package download implements a content-addressed download cache: every URL
// maps to a deterministic local path, and a URL is fetched over the network
// only when that path does not exist yet. Retries with backoff are owned by
// this layer; callers see either a readable local file or an error.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

// Client downloads URLs into an on-disk cache directory.
type Client struct {
	cacheDir string
	http     *retryablehttp.Client
}

// New creates a Client caching into cacheDir. An empty cacheDir selects
// the user cache directory (e.g. ~/.cache/datakit/downloads).
func New(cacheDir string) (*Client, error) {
	hc := retryablehttp.NewClient()
	hc.Logger = nil // progress is logged here, not by the transport
	return NewWithClient(cacheDir, hc)
}

// NewWithClient is like New but uses the given HTTP client, which carries
// the retry policy.
func NewWithClient(cacheDir string, hc *retryablehttp.Client) (*Client, error) {
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user cache directory: %w", err)
		}
		cacheDir = filepath.Join(base, "datakit", "downloads")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download cache: %w", err)
	}
	return &Client{cacheDir: cacheDir, http: hc}, nil
}

// CacheDir returns the resolved cache directory.
func (c *Client) CacheDir() string {
	return c.cacheDir
}

// CachePath returns the local path a URL downloads to. The same URL always
// maps to the same path; distinct URLs never collide thanks to the hash
// prefix even when their file names match.
func (c *Client) CachePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid download URL %q: %w", rawURL, err)
	}
	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:8]) + "-" + path.Base(u.Path)
	return filepath.Join(c.cacheDir, name), nil
}

// Fetch returns a local file containing the body of rawURL, downloading it
// on the first call and serving the cached copy afterwards. The file is
// written to a temporary path and renamed into place, so a concurrent
// reader never observes a partial download.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	local, err := c.CachePath(rawURL)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(local); err == nil {
		log.WithFields(log.Fields{"url": rawURL, "path": local}).Debug("download cache hit")
		return local, nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	log.WithFields(log.Fields{"url": rawURL, "path": local}).Info("downloading")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %q fetching %s", resp.Status, rawURL)
	}

	tmp := local + ".tmp"
	//nolint:gosec // G304: cache path is derived from the URL hash above
	file, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to close download file: %w", err)
	}
	if err := os.Rename(tmp, local); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to publish download: %w", err)
	}

	return local, nil
}
