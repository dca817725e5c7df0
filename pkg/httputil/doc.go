// Package httputil fetches layouts over HTTP.
//
// # Overview
//
// The CLI accepts a layout source that is either a local path or an
// http(s) URL. Remote sources go through a [Client]:
//
//   - [Client.Fetch]: GET a URL with retries, caching the body
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// Response bodies are stored in any [cache.Cache] under a namespaced key,
// so a remote layout indexed twice is downloaded once. Pass refresh to
// bypass the cached body.
//
//	c := httputil.NewClient(fileCache, "layout:", time.Hour, nil)
//	layout, err := c.FetchLayout(ctx, "https://example.com/layout.json", false)
//
// # Retry
//
// [Retry] retries errors wrapped in [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other failures, including 404 and malformed layouts, fail immediately.
package httputil
