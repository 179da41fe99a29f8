package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mstern/restockwatch/internal/checker"
	"mstern/restockwatch/internal/retailer"
	"mstern/restockwatch/internal/watch"
)

type scriptedChecker struct {
	results map[string][]checker.CheckResult
	calls   map[string]int
}

func newScriptedChecker() *scriptedChecker {
	return &scriptedChecker{
		results: make(map[string][]checker.CheckResult),
		calls:   make(map[string]int),
	}
}

func (c *scriptedChecker) script(url string, results ...checker.CheckResult) {
	c.results[url] = results
}

func (c *scriptedChecker) Check(ctx context.Context, url string) checker.CheckResult {
	n := c.calls[url]
	c.calls[url]++
	seq := c.results[url]
	if n >= len(seq) {
		return seq[len(seq)-1]
	}
	return seq[n]
}

type capturingPublisher struct {
	alerts []Alert
	trims  int
}

func (p *capturingPublisher) Publish(retailerKey string, message []byte) error {
	var a Alert
	if err := json.Unmarshal(message, &a); err != nil {
		return err
	}
	p.alerts = append(p.alerts, a)
	return nil
}

func (p *capturingPublisher) TrimStream() error {
	p.trims++
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func available(price string) checker.CheckResult {
	return checker.CheckResult{
		Status:    "✔ In Stock",
		Price:     price,
		Available: true,
		Details:   "enabled control found",
		Retailer:  retailer.BestBuy,
	}
}

func unavailable() checker.CheckResult {
	return checker.CheckResult{
		Status:   "✖ Unavailable",
		Price:    "—",
		Details:  "page shows an explicit stock-out control",
		Retailer: retailer.BestBuy,
	}
}

func TestWorkerAlertsOnTransition(t *testing.T) {
	const url = "https://www.bestbuy.com/site/camera/1.p"
	chk := newScriptedChecker()
	chk.script(url, unavailable(), available("$349.99"), available("$349.99"))
	pub := &capturingPublisher{}

	w := NewWorker(chk, pub, []watch.Product{{Name: "Camera", URL: url}}, 0, 0)

	w.RunCycle(context.Background()) // unavailable: no alert
	w.RunCycle(context.Background()) // becomes available: alert
	w.RunCycle(context.Background()) // still available: no repeat alert

	require.Len(t, pub.alerts, 1)
	assert.Equal(t, "Camera", pub.alerts[0].Product)
	assert.Equal(t, "$349.99", pub.alerts[0].Price)
	assert.Equal(t, "BestBuy", pub.alerts[0].Retailer)
	assert.Equal(t, 3, pub.trims)
}

func TestWorkerAlertsOnFirstCheckIfAvailable(t *testing.T) {
	const url = "https://www.bestbuy.com/site/camera/1.p"
	chk := newScriptedChecker()
	chk.script(url, available("$349.99"))
	pub := &capturingPublisher{}

	w := NewWorker(chk, pub, []watch.Product{{Name: "Camera", URL: url}}, 0, 0)
	w.RunCycle(context.Background())

	assert.Len(t, pub.alerts, 1)
}

func TestWorkerPriceCeiling(t *testing.T) {
	const url = "https://www.bestbuy.com/site/camera/1.p"
	chk := newScriptedChecker()
	chk.script(url, available("$899.99"))
	pub := &capturingPublisher{}

	products := []watch.Product{
		{Name: "Camera", URL: url, PriceCeiling: decimal.NewFromInt(500)},
	}
	w := NewWorker(chk, pub, products, 0, 0)
	w.RunCycle(context.Background())

	// Available but over the ceiling: no alert.
	assert.Empty(t, pub.alerts)

	// Under the ceiling, the transition fires.
	chk2 := newScriptedChecker()
	chk2.script(url, available("$449.99"))
	w2 := NewWorker(chk2, pub, products, 0, 0)
	w2.RunCycle(context.Background())

	assert.Len(t, pub.alerts, 1)
}

func TestWorkerAvailableWithoutPriceAndCeiling(t *testing.T) {
	const url = "https://www.bestbuy.com/site/camera/1.p"
	result := available("—")

	chk := newScriptedChecker()
	chk.script(url, result)
	pub := &capturingPublisher{}
	w := NewWorker(chk, pub, []watch.Product{
		{Name: "Camera", URL: url, PriceCeiling: decimal.NewFromInt(500)},
	}, 0, 0)
	w.RunCycle(context.Background())

	// An unreadable price cannot clear a stated ceiling.
	assert.Empty(t, pub.alerts)

	// Without a ceiling, availability alone is enough.
	chk2 := newScriptedChecker()
	chk2.script(url, result)
	w2 := NewWorker(chk2, pub, []watch.Product{{Name: "Camera", URL: url}}, 0, 0)
	w2.RunCycle(context.Background())

	assert.Len(t, pub.alerts, 1)
}

func TestWorkerSkipsDisabledProducts(t *testing.T) {
	const url = "https://www.bestbuy.com/site/camera/1.p"
	chk := newScriptedChecker()
	chk.script(url, available("$349.99"))
	pub := &capturingPublisher{}

	w := NewWorker(chk, pub, []watch.Product{
		{Name: "Camera", URL: url, Disabled: true},
	}, 0, 0)
	w.RunCycle(context.Background())

	assert.Equal(t, 0, chk.calls[url])
	assert.Empty(t, pub.alerts)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	const url = "https://www.bestbuy.com/site/camera/1.p"
	chk := newScriptedChecker()
	chk.script(url, unavailable())

	w := NewWorker(chk, nil, []watch.Product{{Name: "Camera", URL: url}}, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, w.Start(ctx))
}
