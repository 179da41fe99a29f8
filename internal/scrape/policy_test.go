package scrape

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mstern/restockwatch/internal/retailer"
)

func pRetailer(t *testing.T, rawURL string) retailer.Retailer {
	t.Helper()
	return retailer.Classify(rawURL).Retailer
}

func candidate(raw string, visible bool) PriceCandidate {
	v, ok := ParsePrice(raw)
	if !ok {
		panic("bad test price: " + raw)
	}
	return PriceCandidate{RawText: raw, Value: v, Visible: visible}
}

func TestPolicyForClosedSet(t *testing.T) {
	assert.IsType(t, BestBuyPolicy{}, PolicyFor(pRetailer(t, "https://www.bestbuy.com/site/x/1.p")))
	assert.IsType(t, TargetPolicy{}, PolicyFor(pRetailer(t, "https://www.target.com/p/x/-/A-1")))
	assert.IsType(t, CanonPolicy{}, PolicyFor(pRetailer(t, "https://www.usa.canon.com/shop/p/x")))
	assert.IsType(t, RicohPolicy{}, PolicyFor(pRetailer(t, "https://us.ricoh-imaging.com/product/gr-iii")))
	assert.IsType(t, UnsupportedPolicy{}, PolicyFor(pRetailer(t, "https://www.example.com/x")))
}

func TestDealbreakerOverridesEnabledAction(t *testing.T) {
	// A page can render a clickable Add to Cart while its status region
	// already says the item is gone. The phrase wins.
	sig := AvailabilitySignals{
		HasEnabledPrimaryAction: true,
		ActionLabel:             "Add to Cart",
		RawStatusTexts:          []string{"Status: Currently Unavailable", "Add to Cart"},
	}
	cands := []PriceCandidate{candidate("$899.99", true)}

	for _, pol := range []Policy{BestBuyPolicy{}, TargetPolicy{}, CanonPolicy{}, RicohPolicy{}} {
		d := pol.Decide(cands, sig, PageContext{})
		assert.False(t, d.Available, pol.Retailer().String())
		assert.Equal(t, "Unavailable", d.Status, pol.Retailer().String())
		assert.Contains(t, d.Detail, "currently unavailable")
	}
}

func TestDealbreakerPhrases(t *testing.T) {
	phrases := []string{
		"Sold Out", "Currently unavailable", "Not Available", "OUT OF STOCK",
		"Coming Soon", "This item is no longer available", "Unavailable online",
		"Unavailable for delivery",
	}
	for _, phrase := range phrases {
		_, hit := matchDealbreaker([]string{"something", phrase})
		assert.True(t, hit, phrase)
	}

	_, hit := matchDealbreaker([]string{"In stock", "Add to Cart"})
	assert.False(t, hit)
}

func TestDefaultIsNotAvailable(t *testing.T) {
	// No signals at all resolves conservatively.
	for _, pol := range []Policy{BestBuyPolicy{}, TargetPolicy{}, CanonPolicy{}, RicohPolicy{}} {
		d := pol.Decide(nil, AvailabilitySignals{}, PageContext{})
		assert.False(t, d.Available, pol.Retailer().String())
		assert.Equal(t, "Cannot Determine", d.Status, pol.Retailer().String())
		assert.Equal(t, PriceUnknown, d.PriceDisplay)
		assert.NotEmpty(t, d.Detail)
	}
}

func TestPriceNeverFlipsAvailability(t *testing.T) {
	// A perfectly good price with no purchase signal stays not-available.
	cands := []PriceCandidate{candidate("$896.95", true)}
	d := RicohPolicy{}.Decide(cands, AvailabilitySignals{}, PageContext{})

	assert.False(t, d.Available)
	assert.Equal(t, "$896.95", d.PriceDisplay)
}

func TestDecideIsPure(t *testing.T) {
	sig := AvailabilitySignals{
		HasEnabledPrimaryAction: true,
		ActionLabel:             "Add to Cart",
		RawStatusTexts:          []string{"In stock"},
	}
	cands := []PriceCandidate{candidate("$349.99", true)}
	pc := PageContext{URL: "https://www.bestbuy.com/site/x/1.p"}

	first := BestBuyPolicy{}.Decide(cands, sig, pc)
	second := BestBuyPolicy{}.Decide(cands, sig, pc)

	assert.Equal(t, first, second)
}

func TestSelectPriceOrder(t *testing.T) {
	cands := []PriceCandidate{
		candidate("$500.00", false),
		candidate("$400.00", true),
	}
	p := selectPrice(cands, "", nil)
	require.NotNil(t, p)
	assert.Equal(t, "400.00", p.String())

	// No visible candidate: first one wins.
	p = selectPrice([]PriceCandidate{candidate("$500.00", false)}, "", nil)
	require.NotNil(t, p)
	assert.Equal(t, "500.00", p.String())

	assert.Nil(t, selectPrice(nil, "", nil))
}

func TestJSONPriceFallback(t *testing.T) {
	markup := `<script>{"sku":"6352404","currentPrice":896.95,"regularPrice":"996.95"}</script>`

	p := jsonPriceFallback(markup, []string{"currentPrice"})
	require.NotNil(t, p)
	assert.Equal(t, "896.95", p.String())

	// Quoted, dollar-signed and comma'd variants parse too.
	p = jsonPriceFallback(`"price":"$1,299.00"`, []string{"price"})
	require.NotNil(t, p)
	assert.Equal(t, "1299.00", p.String())

	// Out-of-range values are rejected.
	assert.Nil(t, jsonPriceFallback(`"price":0`, []string{"price"}))
	assert.Nil(t, jsonPriceFallback(`"price":9999999`, []string{"price"}))
	assert.Nil(t, jsonPriceFallback("no json here", []string{"price"}))
}

func TestNewPageContext(t *testing.T) {
	pc := NewPageContext("https://www.bestbuy.com/site/x/1.p", "")
	assert.False(t, pc.ConditionVariant)

	pc = NewPageContext("https://www.bestbuy.com/site/x/1.p?condition=excellent", "")
	assert.True(t, pc.ConditionVariant)
	assert.Equal(t, "excellent", pc.Condition)

	pc = NewPageContext("https://www.bestbuy.com/site/x/1.p?condition=ugly", "")
	assert.True(t, pc.ConditionVariant)
	assert.Equal(t, "", pc.Condition)

	pc = NewPageContext("https://www.bestbuy.com/site/openbox-camera/1.p", "")
	assert.True(t, pc.ConditionVariant)

	pc = NewPageContext("https://www.bestbuy.com/site/refurbished-camera/1.p", "")
	assert.True(t, pc.ConditionVariant)
}

func TestUnsupportedPolicyDecide(t *testing.T) {
	d := UnsupportedPolicy{}.Decide(
		[]PriceCandidate{candidate("$100.00", true)},
		AvailabilitySignals{HasEnabledPrimaryAction: true},
		PageContext{},
	)
	assert.False(t, d.Available)
	assert.Equal(t, "Unsupported Retailer", d.Status)
	assert.Equal(t, PriceUnknown, d.PriceDisplay)
}

func TestDisplayPrice(t *testing.T) {
	assert.Equal(t, PriceUnknown, displayPrice(nil))
	v := decimal.RequireFromString("349.99")
	assert.Equal(t, "$349.99", displayPrice(&v))
}
