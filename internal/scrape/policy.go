package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"mstern/restockwatch/internal/retailer"
)

// PageContext carries per-page facts a policy needs beyond the extractor
// outputs: whether the URL addresses a secondary-condition variant of the
// product (open-box/refurbished), which condition it states, and the raw
// rendered markup for pattern-search fallbacks.
type PageContext struct {
	URL              string
	ConditionVariant bool
	Condition        string
	Markup           string
}

// Decision is the single availability/price verdict for one check.
// Produced exactly once per check and never mutated.
type Decision struct {
	Price        *decimal.Decimal
	PriceDisplay string
	Available    bool
	Status       string
	Detail       string
}

// Policy is the per-retailer decision contract. Implementations are
// stateless: Decide is a pure function of its inputs and never panics;
// any indeterminate input resolves to the conservative not-available
// outcome with an explanatory label.
type Policy interface {
	Retailer() retailer.Retailer
	Band() Band
	Rules() SignalRules
	Decide(cands []PriceCandidate, sig AvailabilitySignals, pc PageContext) Decision
}

// PolicyFor returns the policy variant for a retailer. The set is closed.
func PolicyFor(r retailer.Retailer) Policy {
	switch r {
	case retailer.BestBuy:
		return BestBuyPolicy{}
	case retailer.Target:
		return TargetPolicy{}
	case retailer.Canon:
		return CanonPolicy{}
	case retailer.Ricoh:
		return RicohPolicy{}
	default:
		return UnsupportedPolicy{}
	}
}

// dealbreakers is the fixed phrase list whose presence in any status text
// unconditionally forces "not available", before and regardless of any
// positive signal.
var dealbreakers = []string{
	"sold out",
	"currently unavailable",
	"not available",
	"out of stock",
	"coming soon",
	"no longer available",
	"unavailable online",
	"unavailable for delivery",
}

// matchDealbreaker joins all status texts into one lower-cased string and
// returns the first matching dealbreaker phrase.
func matchDealbreaker(texts []string) (string, bool) {
	joined := strings.ToLower(strings.Join(texts, " "))
	for _, phrase := range dealbreakers {
		if strings.Contains(joined, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// looseBand is the wider range used for the JSON pattern-search price
// fallback, where surrounding context can't vouch for realism.
var looseBand = Band{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(1000000)}

// selectPrice picks the purchase price: the first visible band-filtered
// candidate, else the first candidate at all, else a pattern search over
// the raw markup for known JSON price field names.
func selectPrice(cands []PriceCandidate, markup string, jsonFields []string) *decimal.Decimal {
	for i := range cands {
		if cands[i].Visible {
			v := cands[i].Value
			return &v
		}
	}
	if len(cands) > 0 {
		v := cands[0].Value
		return &v
	}
	return jsonPriceFallback(markup, jsonFields)
}

// jsonPriceFallback searches raw page markup for known JSON price field
// names and parses the first value inside the loose realistic range.
// Defends against pages whose rendered price the extractor couldn't see.
func jsonPriceFallback(markup string, fields []string) *decimal.Decimal {
	for _, field := range fields {
		re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"?\$?([0-9][0-9,]*(?:\.[0-9]+)?)`)
		for _, m := range re.FindAllStringSubmatch(markup, 5) {
			raw := strings.ReplaceAll(m[1], ",", "")
			v, err := decimal.NewFromString(raw)
			if err != nil {
				continue
			}
			if looseBand.Contains(v) {
				return &v
			}
		}
	}
	return nil
}

// displayPrice renders a selected price, falling back to the unknown
// sentinel.
func displayPrice(p *decimal.Decimal) string {
	if p == nil {
		return PriceUnknown
	}
	return FormatPrice(*p)
}

func availableDecision(p *decimal.Decimal, status, detail string) Decision {
	return Decision{
		Price:        p,
		PriceDisplay: displayPrice(p),
		Available:    true,
		Status:       status,
		Detail:       detail,
	}
}

func unavailableDecision(p *decimal.Decimal, status, detail string) Decision {
	return Decision{
		Price:        p,
		PriceDisplay: displayPrice(p),
		Available:    false,
		Status:       status,
		Detail:       detail,
	}
}

// decideSingleChannel is the shared positive path for primary listings on
// single-fulfillment-channel retailers. Callers must have run the
// dealbreaker scan first. A valid price never flips the outcome by itself;
// absence of evidence resolves to not available.
func decideSingleChannel(price *decimal.Decimal, sig AvailabilitySignals) Decision {
	if sig.HasExplicitUnavailableText {
		return unavailableDecision(price, "Unavailable", "page shows an explicit stock-out control")
	}
	if sig.HasEnabledPrimaryAction {
		return availableDecision(price, "In Stock", fmt.Sprintf("enabled %q control found", sig.ActionLabel))
	}
	return unavailableDecision(price, "Cannot Determine", "no purchasable signal found on page")
}

// conditionVariantDecision is the positive path for open-box/secondary
// condition pages: availability is a pure function of the add-to-cart
// control state, nothing else may override it.
func conditionVariantDecision(price *decimal.Decimal, sig AvailabilitySignals, condition string) Decision {
	label := "Open-Box"
	if condition != "" {
		label = "Open-Box " + capitalize(condition)
	}
	if sig.HasEnabledPrimaryAction && !sig.HasExplicitUnavailableText {
		return availableDecision(price, "In Stock ("+label+")", fmt.Sprintf("enabled %q control on condition-variant page", sig.ActionLabel))
	}
	return unavailableDecision(price, "Unavailable ("+label+")", "condition-variant page without an enabled add-to-cart control")
}

// capitalize upper-cases the first letter of an ASCII word.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewPageContext derives the page context from the check URL and rendered
// markup. Condition-variant pages are detected from the URL shape alone.
func NewPageContext(rawURL, markup string) PageContext {
	pc := PageContext{URL: rawURL, Markup: markup}

	u, err := url.Parse(rawURL)
	if err != nil {
		return pc
	}

	lowerPath := strings.ToLower(u.Path)
	condition := strings.ToLower(u.Query().Get("condition"))

	if condition != "" || strings.Contains(lowerPath, "openbox") || strings.Contains(lowerPath, "open-box") || strings.Contains(lowerPath, "refurbished") {
		pc.ConditionVariant = true
		switch condition {
		case "excellent", "good", "fair":
			pc.Condition = condition
		}
	}
	return pc
}
