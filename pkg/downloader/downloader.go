package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxModelBytes is the largest model accepted. Protobuf messages cannot
// exceed 2 GiB.
const MaxModelBytes int64 = 2 << 30

// var so tests can lower it
var maxModelBytes = MaxModelBytes

var (
	// ErrUnsupportedRef is returned when no source handles a reference.
	ErrUnsupportedRef = errors.New("unsupported model reference")
	// ErrTooLarge is returned when a model body exceeds MaxModelBytes.
	ErrTooLarge = errors.New("model exceeds maximum size")
)

// ModelSource fetches serialized models from one kind of remote location.
type ModelSource interface {
	// Handles reports whether ref is a reference this source understands.
	Handles(ref string) bool
	// Fetch retrieves the model bytes for ref.
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Downloader dispatches a model reference to the first ModelSource that
// handles it.
type Downloader struct {
	sources []ModelSource
}

// NewDownloader creates a Downloader trying sources in order.
func NewDownloader(sources ...ModelSource) *Downloader {
	return &Downloader{sources: sources}
}

// Handles reports whether any configured source understands ref.
func (d *Downloader) Handles(ref string) bool {
	return d.source(ref) != nil
}

// Fetch retrieves the model bytes for ref.
func (d *Downloader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	src := d.source(ref)
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
	}
	return src.Fetch(ctx, ref)
}

func (d *Downloader) source(ref string) ModelSource {
	for _, s := range d.sources {
		if s.Handles(ref) {
			return s
		}
	}
	return nil
}

// fetchURL downloads url into memory, sending apiKey as a bearer token when
// it is set.
func fetchURL(ctx context.Context, client *http.Client, url, apiKey string) (data []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file from %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close response body for %s: %w", url, cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file from %s: status code %s", url, resp.Status)
	}
	if resp.ContentLength > maxModelBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, url, resp.ContentLength)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxModelBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	if int64(len(data)) > maxModelBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, url)
	}
	return data, nil
}

// HTTPSource fetches models from plain http and https URLs.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource creates an HTTPSource. A nil client uses http.DefaultClient.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client}
}

// Handles reports whether ref is an http or https URL.
func (h *HTTPSource) Handles(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Fetch downloads the model at the URL ref.
func (h *HTTPSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	return fetchURL(ctx, h.client, ref, "")
}
