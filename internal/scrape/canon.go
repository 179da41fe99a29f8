package scrape

import (
	"fmt"

	"mstern/restockwatch/internal/retailer"
)

// CanonPolicy covers Canon's own store. Pages are server-rendered and
// single-channel; the band is tuned to camera-gear pricing so unrelated
// accessory amounts are rejected.
type CanonPolicy struct{}

func (CanonPolicy) Retailer() retailer.Retailer { return retailer.Canon }

func (CanonPolicy) Band() Band { return NewBand(200, 50000) }

func (CanonPolicy) Rules() SignalRules {
	return SignalRules{
		ActionLabels: []string{"add to cart", "add to bag"},
		UnavailableLabels: []string{
			"out of stock",
			"sold out",
			"coming soon",
			"unavailable",
			"notify me when available",
		},
	}
}

var canonPriceFields = []string{"salePrice", "price"}

func (p CanonPolicy) Decide(cands []PriceCandidate, sig AvailabilitySignals, pc PageContext) Decision {
	price := selectPrice(cands, pc.Markup, canonPriceFields)

	if phrase, hit := matchDealbreaker(sig.RawStatusTexts); hit {
		return unavailableDecision(price, "Unavailable", fmt.Sprintf("page text contains %q", phrase))
	}

	return decideSingleChannel(price, sig)
}
