package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a Client with retries disabled so failure tests do
// not sit in backoff loops.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	hc := retryablehttp.NewClient()
	hc.Logger = nil
	hc.RetryMax = 0
	hc.RetryWaitMin = time.Millisecond
	hc.RetryWaitMax = time.Millisecond

	client, err := NewWithClient(t.TempDir(), hc)
	require.NoError(t, err)
	return client
}

func TestFetch_DownloadsOnce(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	client := newTestClient(t)

	first, err := client.Fetch(context.Background(), server.URL+"/data.gz")
	require.NoError(t, err)

	body, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	second, err := client.Fetch(context.Background(), server.URL+"/data.gz")
	require.NoError(t, err)
	assert.Equal(t, first, second, "same URL must map to the same path")
	assert.Equal(t, int64(1), hits.Load(), "second fetch must be a cache hit")
}

func TestFetch_DistinctURLsDoNotCollide(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	client := newTestClient(t)

	// Same base name under different directories.
	a, err := client.Fetch(context.Background(), server.URL+"/train/data.gz")
	require.NoError(t, err)
	b, err := client.Fetch(context.Background(), server.URL+"/test/data.gz")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	bodyA, err := os.ReadFile(a)
	require.NoError(t, err)
	bodyB, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.NotEqual(t, bodyA, bodyB)
}

func TestFetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t)

	_, err := client.Fetch(context.Background(), server.URL+"/missing.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_ErrorLeavesNoCacheEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t)

	url := server.URL + "/flaky.gz"
	_, err := client.Fetch(context.Background(), url)
	require.Error(t, err)

	local, err := client.CachePath(url)
	require.NoError(t, err)
	_, statErr := os.Stat(local)
	assert.True(t, os.IsNotExist(statErr), "failed download must not populate the cache")
}

func TestFetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, server.URL+"/slow.gz")
	require.Error(t, err)
}

func TestCachePath_Deterministic(t *testing.T) {
	client := newTestClient(t)

	a, err := client.CachePath("https://example.com/mnist/train-images-idx3-ubyte.gz")
	require.NoError(t, err)
	b, err := client.CachePath("https://example.com/mnist/train-images-idx3-ubyte.gz")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "train-images-idx3-ubyte.gz")
}
