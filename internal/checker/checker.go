package checker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"mstern/restockwatch/internal/renderer"
	"mstern/restockwatch/internal/retailer"
	"mstern/restockwatch/internal/scrape"
	"mstern/restockwatch/logger"
	apperrors "mstern/restockwatch/pkg/errors"
	"mstern/restockwatch/services/cache"
)

// CheckResult is the sole value handed back across the core's boundary.
// Status and Details are display strings and are always non-empty; Price
// uses the "—" sentinel when unknown.
type CheckResult struct {
	Status    string            `json:"status"`
	Price     string            `json:"price"`
	Available bool              `json:"available"`
	Details   string            `json:"details"`
	Retailer  retailer.Retailer `json:"retailer"`
}

// Display glyphs prefixed to successful decisions. Purely cosmetic; the
// semantic signal is the Available field.
const (
	glyphAvailable   = "✔ "
	glyphUnavailable = "✖ "
)

// Options tune the orchestrator.
type Options struct {
	// UserAgent overrides the renderer's user agent when non-empty.
	UserAgent string

	// SettleDelay is the fixed wait after load-complete before extraction
	// runs, allowing client-side rendering to finish. A heuristic with no
	// acknowledgment signal from the page; pages still loading after the
	// delay are flagged in the log rather than silently accepted.
	SettleDelay time.Duration

	// FailureCooldown blocks a retailer for this long after a navigation
	// failure. Zero disables the cooldown.
	FailureCooldown time.Duration

	// Timeout overrides the per-retailer check bound when positive.
	Timeout time.Duration
}

// Orchestrator drives one check end to end: URL validation, page load,
// settle, the fixed interrogation sequence, and the retailer policy. At
// most one check may be outstanding per orchestrator instance; callers
// drive checks strictly sequentially.
type Orchestrator struct {
	pool  *renderer.Pool
	cache cache.CacheService
	opts  Options
	log   *logger.Logger
}

// New creates a check orchestrator. cacheSvc may be nil to disable the
// failure cooldown.
func New(pool *renderer.Pool, cacheSvc cache.CacheService, opts Options) *Orchestrator {
	if opts.SettleDelay == 0 {
		opts.SettleDelay = 3500 * time.Millisecond
	}
	return &Orchestrator{
		pool:  pool,
		cache: cacheSvc,
		opts:  opts,
		log:   logger.ForChecker(),
	}
}

// Check runs one availability/price check against the URL. Every failure
// mode is absorbed and converted into a CheckResult; Check never returns
// an error and never retries internally.
func (o *Orchestrator) Check(ctx context.Context, rawURL string) CheckResult {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		cerr := apperrors.NewInvalidURL(rawURL)
		return CheckResult{
			Status:   "Invalid URL",
			Price:    scrape.PriceUnknown,
			Details:  cerr.Message,
			Retailer: retailer.Unsupported,
		}
	}

	cls := retailer.Classify(rawURL)
	r := cls.Retailer
	if r == retailer.Unsupported {
		return CheckResult{
			Status:   "Unsupported Retailer",
			Price:    scrape.PriceUnknown,
			Details:  cls.Reason,
			Retailer: r,
		}
	}

	if o.underCooldown(r) {
		return CheckResult{
			Status:   "Load Failed",
			Price:    scrape.PriceUnknown,
			Details:  fmt.Sprintf("%s is cooling down after a recent navigation failure", r),
			Retailer: r,
		}
	}

	bound := r.CheckTimeout()
	if o.opts.Timeout > 0 {
		bound = o.opts.Timeout
	}
	cctx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()

	rnd, err := o.pool.GetOrCreate(r)
	if err != nil {
		rerr := apperrors.NewRenderer(r.String(), "failed to start renderer", err)
		return CheckResult{
			Status:   "Load Failed",
			Price:    scrape.PriceUnknown,
			Details:  rerr.Error(),
			Retailer: r,
		}
	}

	if err := rnd.Load(cctx, rawURL, o.opts.UserAgent); err != nil {
		if timedOut(cctx, err) {
			return o.timeoutResult(r, bound)
		}
		o.setCooldown(r)
		nerr := apperrors.NewNavigation(r.String(), "page load failed", err)
		o.log.Warn().Err(err).Str("url", rawURL).Msg("Navigation failed")
		return CheckResult{
			Status:   "Load Failed",
			Price:    scrape.PriceUnknown,
			Details:  nerr.Error(),
			Retailer: r,
		}
	}

	// Settle: let client-side rendering finish before interrogation.
	select {
	case <-time.After(o.opts.SettleDelay):
	case <-cctx.Done():
		return o.timeoutResult(r, bound)
	}

	var readyState string
	if err := rnd.Evaluate(cctx, renderer.ReadyStateScript, &readyState); err == nil && readyState != "complete" {
		o.log.Warn().
			Str("url", rawURL).
			Str("ready_state", readyState).
			Msg("Page still loading after settle delay; extraction may be incomplete")
	}

	snap, err := o.interrogate(cctx, rnd, rawURL)
	if err != nil {
		if timedOut(cctx, err) {
			return o.timeoutResult(r, bound)
		}
		ierr := apperrors.NewIndeterminate(r.String(), fmt.Sprintf("script evaluation failed: %v", err))
		return CheckResult{
			Status:   glyphUnavailable + "Cannot Determine",
			Price:    scrape.PriceUnknown,
			Details:  ierr.Message,
			Retailer: r,
		}
	}

	pol := scrape.PolicyFor(r)
	cands := scrape.ExtractPrices(snap, pol.Band())
	sig := scrape.ExtractSignals(snap, pol.Rules())
	pc := scrape.NewPageContext(rawURL, snap.Markup)
	decision := pol.Decide(cands, sig, pc)

	glyph := glyphUnavailable
	if decision.Available {
		glyph = glyphAvailable
	}
	return CheckResult{
		Status:    glyph + decision.Status,
		Price:     decision.PriceDisplay,
		Available: decision.Available,
		Details:   decision.Detail,
		Retailer:  r,
	}
}

// interrogate runs the fixed evaluation sequence against the rendered
// page: price texts, then status texts, then button controls, then the
// full markup. The policy only ever sees the complete snapshot.
func (o *Orchestrator) interrogate(ctx context.Context, rnd renderer.Renderer, rawURL string) (*scrape.Snapshot, error) {
	var priceTexts []scrape.PriceText
	if err := rnd.Evaluate(ctx, renderer.PriceScript, &priceTexts); err != nil {
		return nil, fmt.Errorf("price interrogation: %w", err)
	}

	var status renderer.StatusPayload
	if err := rnd.Evaluate(ctx, renderer.StatusScript, &status); err != nil {
		return nil, fmt.Errorf("status interrogation: %w", err)
	}

	var controls []scrape.Control
	if err := rnd.Evaluate(ctx, renderer.ControlScript, &controls); err != nil {
		return nil, fmt.Errorf("control interrogation: %w", err)
	}

	markup, err := rnd.Markup(ctx)
	if err != nil {
		return nil, fmt.Errorf("markup read: %w", err)
	}

	return &scrape.Snapshot{
		URL:            rawURL,
		ViewportHeight: status.ViewportHeight,
		PriceTexts:     priceTexts,
		Controls:       controls,
		StatusTexts:    status.StatusTexts,
		ChannelTexts:   status.Channels,
		Markup:         markup,
	}, nil
}

func (o *Orchestrator) timeoutResult(r retailer.Retailer, bound time.Duration) CheckResult {
	terr := apperrors.NewTimeout(r.String(), bound)
	return CheckResult{
		Status:   "Timeout",
		Price:    scrape.PriceUnknown,
		Details:  terr.Message,
		Retailer: r,
	}
}

func (o *Orchestrator) underCooldown(r retailer.Retailer) bool {
	if o.cache == nil || o.opts.FailureCooldown <= 0 {
		return false
	}
	_, err := o.cache.Get(cooldownKey(r))
	return err == nil
}

func (o *Orchestrator) setCooldown(r retailer.Retailer) {
	if o.cache == nil || o.opts.FailureCooldown <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(o.opts.FailureCooldown.Seconds())))
	if err := o.cache.Set(cooldownKey(r), value, o.opts.FailureCooldown); err != nil {
		o.log.Warn().Err(err).Str("retailer", r.String()).Msg("Failed to set failure cooldown")
	}
}

func cooldownKey(r retailer.Retailer) string {
	return fmt.Sprintf("%s_cooldown", r)
}

// timedOut reports whether an operation failed because the check bound
// elapsed rather than for a transport reason.
func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
