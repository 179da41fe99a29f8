package renderer

import (
	"context"
	"sync"

	"mstern/restockwatch/internal/retailer"
	"mstern/restockwatch/logger"
)

// Renderer is the page-rendering collaborator: load a URL, let it settle,
// interrogate the rendered page with a script, read the full markup. One
// renderer instance serves one retailer's checks, strictly serially; it
// cannot safely host two in-flight navigations.
type Renderer interface {
	// Load navigates the renderer to the URL. The context bounds the
	// navigation; an abandoned load may still be in flight afterward,
	// which is tolerated because the next Load simply redirects the
	// surface.
	Load(ctx context.Context, url, userAgent string) error

	// Evaluate runs an interrogation script against the rendered page and
	// unmarshals its JSON-serializable result into out.
	Evaluate(ctx context.Context, js string, out interface{}) error

	// Markup returns the full rendered markup.
	Markup(ctx context.Context) (string, error)

	// Close releases the rendering surface.
	Close() error
}

// StatusPayload is the result shape of StatusScript: status/error texts in
// document order, per-channel fulfillment region texts, and the viewport
// height used for visibility math.
type StatusPayload struct {
	StatusTexts    []string          `json:"statusTexts"`
	Channels       map[string]string `json:"channels"`
	ViewportHeight float64           `json:"viewportHeight"`
}

// Factory builds a renderer for a retailer.
type Factory func(r retailer.Retailer) (Renderer, error)

// Pool is the explicit registry of long-lived renderers, one per retailer,
// created lazily on first use and kept for the process lifetime. It is
// owned by the orchestrator; callers never share a renderer across
// concurrent checks.
type Pool struct {
	mu        sync.Mutex
	factory   Factory
	renderers map[retailer.Retailer]Renderer
}

// NewPool creates a renderer pool backed by the given factory.
func NewPool(factory Factory) *Pool {
	return &Pool{
		factory:   factory,
		renderers: make(map[retailer.Retailer]Renderer),
	}
}

// GetOrCreate returns the retailer's renderer, creating it on first use.
func (p *Pool) GetOrCreate(r retailer.Retailer) (Renderer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rnd, ok := p.renderers[r]; ok {
		return rnd, nil
	}

	rnd, err := p.factory(r)
	if err != nil {
		return nil, err
	}
	p.renderers[r] = rnd
	return rnd, nil
}

// Close releases every renderer in the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := logger.ForRenderer()
	for r, rnd := range p.renderers {
		if err := rnd.Close(); err != nil {
			log.Warn().Err(err).Str("retailer", r.String()).Msg("Failed to close renderer")
		}
		delete(p.renderers, r)
	}
}

// DefaultFactory picks the renderer implementation per retailer: a real
// browser engine for client-rendered sites, a plain fetch for
// server-rendered ones.
func DefaultFactory(headless bool) Factory {
	return func(r retailer.Retailer) (Renderer, error) {
		if r.NeedsBrowser() {
			return newBrowserRenderer(headless)
		}
		return newStaticRenderer(), nil
	}
}
