package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/virtgrid/pkg/cache"
	"github.com/matzehuels/virtgrid/pkg/errors"
	pkgio "github.com/matzehuels/virtgrid/pkg/io"
)

const (
	httpTimeout = 10 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 64 << 20
)

// Client fetches remote resources through a cache with retries.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string

	retryDelay time.Duration
	maxBody    int64
}

// NewClient creates a Client. Cached bodies are stored under prefix+url
// for ttl. A nil cache disables caching. Headers are sent with every
// request; nil is allowed.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,

		retryDelay: time.Second,
		maxBody:    maxBodySize,
	}
}

// IsURL reports whether src names an http or https resource.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Cached returns the body stored under key, or calls fetch with retries
// and stores its result. If refresh is true the cached body is ignored.
// A failing cache never fails the call.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	key = c.prefix + key
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return data, nil
		}
	}

	var data []byte
	err := Retry(ctx, 3, c.retryDelay, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, c.ttl)
	return data, nil
}

// Fetch GETs url and returns the body, served from the cache when present.
func (c *Client) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	return c.Cached(ctx, url, refresh, func() ([]byte, error) {
		return c.get(ctx, url)
	})
}

// FetchLayout downloads and validates the layout at url.
func (c *Client) FetchLayout(ctx context.Context, url string, refresh bool) (pkgio.Layout, error) {
	data, err := c.Fetch(ctx, url, refresh)
	if err != nil {
		return pkgio.Layout{}, err
	}
	l, err := pkgio.ReadLayout(bytes.NewReader(data))
	if err != nil {
		return pkgio.Layout{}, fmt.Errorf("%s: %w", url, err)
	}
	return l, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad url %q", url)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url)}
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url)}
	}
	if int64(len(data)) > c.maxBody {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: body exceeds %d bytes", url, c.maxBody)
	}
	return data, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", url)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "GET %s: status %d", url, code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "GET %s: status %d", url, code)
	}
}
