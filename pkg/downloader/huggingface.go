package downloader

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultHuggingFaceCDN is the base URL for direct file downloads.
	DefaultHuggingFaceCDN = "https://huggingface.co/"

	huggingFaceScheme = "hf://"
	defaultRevision   = "main"
)

// HuggingFaceSource fetches single files from HuggingFace Hub repositories.
// References look like hf://<org>/<repo>[@<revision>]/<path/to/model.onnx>.
type HuggingFaceSource struct {
	client *http.Client
	cdnURL string
	apiKey string
}

// NewHuggingFaceSource creates a HuggingFaceSource. An empty cdnURL uses
// DefaultHuggingFaceCDN; an empty apiKey sends unauthenticated requests.
func NewHuggingFaceSource(client *http.Client, cdnURL, apiKey string) *HuggingFaceSource {
	if client == nil {
		client = http.DefaultClient
	}
	if cdnURL == "" {
		cdnURL = DefaultHuggingFaceCDN
	}
	return &HuggingFaceSource{client: client, cdnURL: cdnURL, apiKey: apiKey}
}

// Handles reports whether ref uses the hf:// scheme.
func (h *HuggingFaceSource) Handles(ref string) bool {
	return strings.HasPrefix(ref, huggingFaceScheme)
}

// ResolveURL maps an hf:// reference to its download URL.
func (h *HuggingFaceSource) ResolveURL(ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, huggingFaceScheme)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" || strings.HasSuffix(parts[2], "/") {
		return "", fmt.Errorf("%w: %s: want hf://<org>/<repo>/<file>", ErrUnsupportedRef, ref)
	}

	org, repo, file := parts[0], parts[1], parts[2]
	revision := defaultRevision
	if name, rev, found := strings.Cut(repo, "@"); found {
		if name == "" || rev == "" {
			return "", fmt.Errorf("%w: %s: empty repository or revision", ErrUnsupportedRef, ref)
		}
		repo, revision = name, rev
	}

	base := strings.TrimSuffix(h.cdnURL, "/")
	return fmt.Sprintf("%s/%s/%s/resolve/%s/%s", base, org, repo, revision, file), nil
}

// Fetch downloads the file named by an hf:// reference.
func (h *HuggingFaceSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	url, err := h.ResolveURL(ref)
	if err != nil {
		return nil, err
	}
	return fetchURL(ctx, h.client, url, h.apiKey)
}
