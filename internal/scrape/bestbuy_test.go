package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestBuyConditionVariantFollowsControlOnly(t *testing.T) {
	pc := NewPageContext("https://www.bestbuy.com/site/camera/1.p?condition=excellent", "")
	require.True(t, pc.ConditionVariant)

	// Enabled control, no stock-out: available, condition in the label.
	sig := AvailabilitySignals{HasEnabledPrimaryAction: true, ActionLabel: "Add to Cart"}
	d := BestBuyPolicy{}.Decide(nil, sig, pc)
	assert.True(t, d.Available)
	assert.Equal(t, "In Stock (Open-Box Excellent)", d.Status)

	// No enabled control: unavailable, regardless of anything else.
	d = BestBuyPolicy{}.Decide(nil, AvailabilitySignals{}, pc)
	assert.False(t, d.Available)
	assert.Equal(t, "Unavailable (Open-Box Excellent)", d.Status)

	// Enabled control plus an explicit stock-out: the stock-out wins.
	sig.HasExplicitUnavailableText = true
	d = BestBuyPolicy{}.Decide(nil, sig, pc)
	assert.False(t, d.Available)
}

func TestBestBuyConditionVariantDealbreakerStillWins(t *testing.T) {
	pc := NewPageContext("https://www.bestbuy.com/site/camera/1.p?condition=good", "")
	sig := AvailabilitySignals{
		HasEnabledPrimaryAction: true,
		ActionLabel:             "Add to Cart",
		RawStatusTexts:          []string{"Sold Out"},
	}

	d := BestBuyPolicy{}.Decide(nil, sig, pc)

	assert.False(t, d.Available)
	assert.Equal(t, "Unavailable", d.Status)
}

func TestBestBuyButtonStateFallback(t *testing.T) {
	pc := PageContext{Markup: `{"buttonState":"ADD_TO_CART","skuId":"6352404"}`}

	// Consulted only when the control scan found nothing.
	d := BestBuyPolicy{}.Decide(nil, AvailabilitySignals{}, pc)
	assert.True(t, d.Available)
	assert.Equal(t, "In Stock", d.Status)
	assert.Contains(t, d.Detail, "ADD_TO_CART")

	pc.Markup = `{"buttonState":"SOLD_OUT"}`
	d = BestBuyPolicy{}.Decide(nil, AvailabilitySignals{}, pc)
	assert.False(t, d.Available)
	assert.Equal(t, "Unavailable", d.Status)

	// Unknown states resolve conservatively.
	pc.Markup = `{"buttonState":"CHECK_STORES"}`
	d = BestBuyPolicy{}.Decide(nil, AvailabilitySignals{}, pc)
	assert.False(t, d.Available)
	assert.Equal(t, "Cannot Determine", d.Status)
}

func TestBestBuyEnabledActionBeatsNegativeButtonState(t *testing.T) {
	// A rendered, clickable control is stronger evidence than a stale
	// embedded fragment.
	pc := PageContext{Markup: `{"buttonState":"SOLD_OUT"}`}
	sig := AvailabilitySignals{HasEnabledPrimaryAction: true, ActionLabel: "Add to Cart"}

	d := BestBuyPolicy{}.Decide(nil, sig, pc)

	assert.True(t, d.Available)
	assert.Equal(t, "In Stock", d.Status)
}

func TestBestBuyOpenBoxPricePreference(t *testing.T) {
	cands := []PriceCandidate{
		candidate("Buy New: $999.99", true),
		candidate("Open-Box Excellent: $849.99", false),
		candidate("$879.99", false),
	}

	// Condition named in a candidate's text wins.
	p := openBoxPrice(cands, "excellent")
	require.NotNil(t, p)
	assert.Equal(t, "849.99", p.String())

	// Without a condition match: first visible non-"buy new", else the
	// lowest non-"buy new".
	p = openBoxPrice(cands, "")
	require.NotNil(t, p)
	assert.Equal(t, "849.99", p.String())

	visible := []PriceCandidate{
		candidate("Buy New: $999.99", true),
		candidate("$879.99", true),
		candidate("$849.99", false),
	}
	p = openBoxPrice(visible, "")
	require.NotNil(t, p)
	assert.Equal(t, "879.99", p.String())

	assert.Nil(t, openBoxPrice(nil, "excellent"))
}

func TestBestBuyOpenBoxJSONFallback(t *testing.T) {
	pc := NewPageContext("https://www.bestbuy.com/site/camera/1.p?condition=fair",
		`{"openBoxPrice":"719.99","currentPrice":"999.99"}`)
	sig := AvailabilitySignals{HasEnabledPrimaryAction: true, ActionLabel: "Add to Cart"}

	d := BestBuyPolicy{}.Decide(nil, sig, pc)

	assert.True(t, d.Available)
	assert.Equal(t, "$719.99", d.PriceDisplay)
}
