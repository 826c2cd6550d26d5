// Copyright 2025 The Datakit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package download provides a content-addressed download cache: every URL
// maps to a deterministic local path, and a URL is fetched over the network
// only when that path does not exist yet.
//
// Example usage:
//
//	client, err := download.New("") // cache under ~/.cache/datakit/downloads
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path, err := client.Fetch(ctx, "https://example.com/archive.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// path now points at a fully written local copy.
package download

import (
	"github.com/hashicorp/go-retryablehttp"

	"github.com/loam-ml/datakit/internal/download"
)

// Client downloads URLs into an on-disk cache directory. Downloads publish
// atomically, so a path returned by Fetch always names a complete file.
type Client = download.Client

// New creates a Client caching into cacheDir. An empty cacheDir selects the
// user cache directory.
func New(cacheDir string) (*Client, error) {
	return download.New(cacheDir)
}

// NewWithClient is like New but uses the given HTTP client, which carries
// the retry policy.
func NewWithClient(cacheDir string, hc *retryablehttp.Client) (*Client, error) {
	return download.NewWithClient(cacheDir, hc)
}
