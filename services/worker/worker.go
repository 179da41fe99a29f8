package worker

import (
	"context"
	"encoding/json"
	"time"

	"mstern/restockwatch/internal/checker"
	"mstern/restockwatch/internal/scrape"
	"mstern/restockwatch/internal/watch"
	"mstern/restockwatch/logger"
	"mstern/restockwatch/services/publisher"
)

// Checker runs one availability/price check. Satisfied by
// checker.Orchestrator.
type Checker interface {
	Check(ctx context.Context, url string) checker.CheckResult
}

// Alert is the message appended to the alert stream when a watched product
// transitions to available under its price ceiling.
type Alert struct {
	Product   string `json:"product"`
	URL       string `json:"url"`
	Retailer  string `json:"retailer"`
	Status    string `json:"status"`
	Price     string `json:"price"`
	Details   string `json:"details"`
	CheckedAt string `json:"checked_at"`
}

// Worker drives the watchlist through the checker on a fixed interval,
// strictly sequentially, and publishes transition alerts. Checks within a
// cycle are spaced by a polite delay.
type Worker struct {
	checker         Checker
	publisher       publisher.Publisher
	products        []watch.Product
	checkInterval   time.Duration
	interCheckDelay time.Duration
	last            map[string]checker.CheckResult
	log             *logger.Logger
}

// NewWorker creates a watchlist worker. publisher may be nil to disable
// alerting (check-and-log only).
func NewWorker(chk Checker, pub publisher.Publisher, products []watch.Product, checkInterval, interCheckDelay time.Duration) *Worker {
	return &Worker{
		checker:         chk,
		publisher:       pub,
		products:        products,
		checkInterval:   checkInterval,
		interCheckDelay: interCheckDelay,
		last:            make(map[string]checker.CheckResult),
		log:             logger.ForWorker(),
	}
}

// Start runs check cycles until the context is cancelled, then returns nil.
func (w *Worker) Start(ctx context.Context) error {
	w.log.Info().
		Int("products", len(w.products)).
		Dur("interval", w.checkInterval).
		Msg("Worker started")

	for {
		w.RunCycle(ctx)

		if ctx.Err() != nil {
			w.log.Info().Msg("Worker stopped")
			return nil
		}
		select {
		case <-time.After(w.checkInterval):
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return nil
		}
	}
}

// RunCycle checks every enabled product once, in watchlist order.
func (w *Worker) RunCycle(ctx context.Context) {
	for i, p := range w.products {
		if ctx.Err() != nil {
			return
		}
		if p.Disabled {
			continue
		}

		result := w.checker.Check(ctx, p.URL)
		w.log.Info().
			Str("product", p.Name).
			Str("status", result.Status).
			Str("price", result.Price).
			Bool("available", result.Available).
			Msg("Check completed")

		if w.shouldAlert(p, result) {
			w.alert(p, result)
		}
		w.last[p.URL] = result

		if i < len(w.products)-1 && w.interCheckDelay > 0 {
			select {
			case <-time.After(w.interCheckDelay):
			case <-ctx.Done():
				return
			}
		}
	}

	if w.publisher != nil {
		if err := w.publisher.TrimStream(); err != nil {
			w.log.Warn().Err(err).Msg("Failed to trim alert stream")
		}
	}
}

// shouldAlert reports whether this result is an alert-worthy transition:
// the product was not available on the previous check (or was never
// checked), is available now, and its price clears the ceiling.
func (w *Worker) shouldAlert(p watch.Product, result checker.CheckResult) bool {
	if !result.Available {
		return false
	}
	if prev, seen := w.last[p.URL]; seen && prev.Available {
		return false
	}
	if p.PriceCeiling.IsZero() {
		return true
	}
	price, ok := scrape.ParsePrice(result.Price)
	if !ok {
		// Available with no readable price: let the ceiling-less reader
		// decide, do not alert against a stated ceiling.
		return false
	}
	return price.LessThanOrEqual(p.PriceCeiling)
}

func (w *Worker) alert(p watch.Product, result checker.CheckResult) {
	w.log.Info().
		Str("product", p.Name).
		Str("price", result.Price).
		Msg("Product became available")

	if w.publisher == nil {
		return
	}

	msg, err := json.Marshal(Alert{
		Product:   p.Name,
		URL:       p.URL,
		Retailer:  result.Retailer.String(),
		Status:    result.Status,
		Price:     result.Price,
		Details:   result.Details,
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		w.log.Error().Err(err).Str("product", p.Name).Msg("Failed to encode alert")
		return
	}

	if err := w.publisher.Publish(result.Retailer.String(), msg); err != nil {
		w.log.Error().Err(err).Str("product", p.Name).Msg("Failed to publish alert")
	}
}
