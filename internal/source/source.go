// Package source fetches named question resources from a directory or an
// HTTP server and hands back their text as UTF-8.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when the named resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Fetcher returns the content of a named resource. Names are slash
// separated and relative to the source root.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirFetcher reads resources from a file system, typically os.DirFS.
type DirFetcher struct {
	fsys fs.FS
}

// NewDirFetcher creates a DirFetcher over fsys.
func NewDirFetcher(fsys fs.FS) *DirFetcher {
	return &DirFetcher{fsys: fsys}
}

// Fetch implements Fetcher.
func (d *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(d.fsys, path.Clean(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// HTTPFetcher reads resources relative to a base URL.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient overrides the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPFetcher) { h.client = c }
}

// NewHTTPFetcher creates an HTTPFetcher rooted at baseURL.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	h := &HTTPFetcher{
		base:   u,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

// Fetch implements Fetcher.
func (h *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	target := h.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("get %s: unexpected status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// New picks an HTTPFetcher for http(s) locations and a DirFetcher for
// anything else.
func New(location string, dirFS func(string) fs.FS) (Fetcher, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPFetcher(location)
	}
	return NewDirFetcher(dirFS(location)), nil
}
