package scrape

import (
	"fmt"

	"mstern/restockwatch/internal/retailer"
)

// RicohPolicy covers the Ricoh Imaging store: server-rendered,
// single-channel, camera-gear price band.
type RicohPolicy struct{}

func (RicohPolicy) Retailer() retailer.Retailer { return retailer.Ricoh }

func (RicohPolicy) Band() Band { return NewBand(200, 50000) }

func (RicohPolicy) Rules() SignalRules {
	return SignalRules{
		ActionLabels: []string{"add to cart"},
		UnavailableLabels: []string{
			"sold out",
			"out of stock",
			"currently unavailable",
		},
	}
}

var ricohPriceFields = []string{"price"}

func (p RicohPolicy) Decide(cands []PriceCandidate, sig AvailabilitySignals, pc PageContext) Decision {
	price := selectPrice(cands, pc.Markup, ricohPriceFields)

	if phrase, hit := matchDealbreaker(sig.RawStatusTexts); hit {
		return unavailableDecision(price, "Unavailable", fmt.Sprintf("page text contains %q", phrase))
	}

	return decideSingleChannel(price, sig)
}
