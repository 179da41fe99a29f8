package scrape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"mstern/restockwatch/internal/retailer"
)

// BestBuyPolicy is the most involved variant: it handles open-box
// condition pages, a machine-readable button-state JSON fragment BestBuy
// embeds in its markup, and an open-box price payload that renders late.
type BestBuyPolicy struct{}

func (BestBuyPolicy) Retailer() retailer.Retailer { return retailer.BestBuy }

func (BestBuyPolicy) Band() Band { return NewBand(50, 100000) }

func (BestBuyPolicy) Rules() SignalRules {
	return SignalRules{
		ActionLabels: []string{"add to cart"},
		UnavailableLabels: []string{
			"sold out",
			"unavailable",
			"currently unavailable",
			"out of stock",
			"coming soon",
			"unavailable nearby",
		},
	}
}

var (
	// buttonStateRe finds BestBuy's fulfillment button-state JSON fragment.
	buttonStateRe = regexp.MustCompile(`"buttonState"\s*:\s*"([A-Z_]+)"`)

	buttonStatePositive = map[string]bool{
		"ADD_TO_CART": true,
	}
	buttonStateNegative = map[string]bool{
		"SOLD_OUT":    true,
		"COMING_SOON": true,
		"UNAVAILABLE": true,
	}

	// openBoxPriceFields are the JSON field names BestBuy uses for the
	// purchasable price, in fallback preference order.
	openBoxPriceFields = []string{"openBoxPrice", "currentPrice", "customerPrice"}
)

func (p BestBuyPolicy) Decide(cands []PriceCandidate, sig AvailabilitySignals, pc PageContext) Decision {
	var price *decimal.Decimal
	if pc.ConditionVariant {
		price = openBoxPrice(cands, pc.Condition)
		if price == nil {
			price = jsonPriceFallback(pc.Markup, openBoxPriceFields)
		}
	} else {
		price = selectPrice(cands, pc.Markup, openBoxPriceFields)
	}

	if phrase, hit := matchDealbreaker(sig.RawStatusTexts); hit {
		return unavailableDecision(price, "Unavailable", fmt.Sprintf("page text contains %q", phrase))
	}

	if pc.ConditionVariant {
		return conditionVariantDecision(price, sig, pc.Condition)
	}

	if sig.HasExplicitUnavailableText {
		return unavailableDecision(price, "Unavailable", "page shows an explicit stock-out control")
	}
	if sig.HasEnabledPrimaryAction {
		return availableDecision(price, "In Stock", fmt.Sprintf("enabled %q control found", sig.ActionLabel))
	}

	// The control scan can miss a button that renders after the settle
	// window. An explicit positive button state in the embedded JSON is a
	// strong independent confirmation; a negative state is consulted only
	// now, after the action and dealbreaker checks found nothing.
	if state, ok := buttonState(pc.Markup); ok {
		if buttonStatePositive[state] {
			return availableDecision(price, "In Stock", "embedded button state "+state)
		}
		if buttonStateNegative[state] {
			return unavailableDecision(price, "Unavailable", "embedded button state "+state)
		}
	}

	return unavailableDecision(price, "Cannot Determine", "no purchasable signal found on page")
}

// buttonState extracts the first machine-readable button state from the
// raw markup.
func buttonState(markup string) (string, bool) {
	m := buttonStateRe.FindStringSubmatch(markup)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// openBoxPrice applies the condition-variant price preference order:
// a candidate whose text names the URL's stated condition, else the first
// visible candidate not labeled "buy new", else the lowest non-"buy new"
// candidate.
func openBoxPrice(cands []PriceCandidate, condition string) *decimal.Decimal {
	if condition != "" {
		for i := range cands {
			if strings.Contains(strings.ToLower(cands[i].RawText), condition) {
				v := cands[i].Value
				return &v
			}
		}
	}

	var lowest *decimal.Decimal
	for i := range cands {
		if strings.Contains(strings.ToLower(cands[i].RawText), "buy new") {
			continue
		}
		if cands[i].Visible {
			v := cands[i].Value
			return &v
		}
		if lowest == nil || cands[i].Value.LessThan(*lowest) {
			v := cands[i].Value
			lowest = &v
		}
	}
	return lowest
}
