package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/todmy/ahp/internal/hierarchy"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 5 << 20 // 5 MB
)

var ErrBadStatus = errors.New("unexpected response status")

// Source supplies the node list of a hierarchy, root first
type Source interface {
	Load(ctx context.Context) ([]hierarchy.Node, error)
}

// Decode reads a JSON array of nodes
func Decode(r io.Reader) ([]hierarchy.Node, error) {
	var nodes []hierarchy.Node
	if err := json.NewDecoder(io.LimitReader(r, maxBodySize)).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("failed to decode hierarchy: %w", err)
	}
	if len(nodes) == 0 {
		return nil, hierarchy.ErrEmptyHierarchy
	}
	return nodes, nil
}

// File loads a hierarchy from a JSON file
type File struct {
	Path string
}

func (f File) Load(ctx context.Context) ([]hierarchy.Node, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hierarchy file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// HTTP fetches a hierarchy JSON document from a URL
type HTTP struct {
	httpClient *http.Client
	url        string
}

// HTTPOption configures the HTTP source
type HTTPOption func(*HTTP)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.httpClient = c
	}
}

// NewHTTP creates a new URL-backed source
func NewHTTP(url string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		httpClient: &http.Client{Timeout: defaultTimeout},
		url:        url,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) Load(ctx context.Context) ([]hierarchy.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hierarchy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, h.url)
	}

	return Decode(resp.Body)
}
