package topology

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const maxDocumentBytes = 64 << 20

// Provider fetches the topology document on first use and then serves the
// same immutable value forever. A failed load is not cached: the next Get
// tries again.
type Provider struct {
	source string
	http   *http.Client
	logger *slog.Logger

	mu   sync.Mutex
	topo atomic.Pointer[Topology]
}

// Option configures a Provider.
type Option func(*Provider)

func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provider) {
		p.http = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider reads from source: an http(s) URL or a filesystem path.
func NewProvider(source string, opts ...Option) *Provider {
	p := &Provider{
		source: source,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewStatic returns a provider that already holds t, for tests and embedded
// boundaries.
func NewStatic(t *Topology) *Provider {
	p := NewProvider("")
	p.topo.Store(t)
	return p
}

// Loaded reports whether a document has been loaded.
func (p *Provider) Loaded() bool {
	return p.topo.Load() != nil
}

// Get returns the topology, loading it if no load has succeeded yet.
func (p *Provider) Get(ctx context.Context) (*Topology, error) {
	if t := p.topo.Load(); t != nil {
		return t, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if t := p.topo.Load(); t != nil {
		return t, nil
	}

	data, err := p.read(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "topology load failed", "source", p.source, "error", err)
		return nil, err
	}
	t, err := Decode(data)
	if err != nil {
		p.logger.WarnContext(ctx, "topology decode failed", "source", p.source, "error", err)
		return nil, err
	}
	p.topo.Store(t)
	p.logger.InfoContext(ctx, "topology loaded",
		"source", p.source,
		"format", t.Format,
		"features", t.Len(),
	)
	return t, nil
}

func (p *Provider) read(ctx context.Context) ([]byte, error) {
	if p.source == "" {
		return nil, fmt.Errorf("topology source not configured")
	}
	if !strings.HasPrefix(p.source, "http://") && !strings.HasPrefix(p.source, "https://") {
		data, err := os.ReadFile(p.source)
		if err != nil {
			return nil, fmt.Errorf("read topology file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.source, nil)
	if err != nil {
		return nil, fmt.Errorf("build topology request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch topology: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch topology: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read topology body: %w", err)
	}
	return data, nil
}
