package scrape

import (
	"fmt"
	"strings"

	"mstern/restockwatch/internal/retailer"
)

// TargetPolicy handles Target's multi-channel fulfillment: shipping,
// in-store pickup and scheduled delivery each carry their own status
// region, and the item is purchasable when any one of them is.
type TargetPolicy struct{}

func (TargetPolicy) Retailer() retailer.Retailer { return retailer.Target }

func (TargetPolicy) Band() Band { return NewBand(50, 100000) }

// targetChannels is the declared stable order for aggregate status labels.
var targetChannels = []string{"shipping", "pickup", "delivery"}

func (TargetPolicy) Rules() SignalRules {
	return SignalRules{
		ActionLabels: []string{"add to cart", "ship it"},
		UnavailableLabels: []string{
			"sold out",
			"out of stock",
			"unavailable",
			"currently unavailable",
		},
		Channels: targetChannels,
	}
}

var targetPriceFields = []string{"current_retail", "formatted_current_price"}

func (p TargetPolicy) Decide(cands []PriceCandidate, sig AvailabilitySignals, pc PageContext) Decision {
	price := selectPrice(cands, pc.Markup, targetPriceFields)

	if phrase, hit := matchDealbreaker(sig.RawStatusTexts); hit {
		return unavailableDecision(price, "Unavailable", fmt.Sprintf("page text contains %q", phrase))
	}

	if len(sig.FulfillmentChannels) > 0 {
		var open []string
		for _, name := range targetChannels {
			if sig.FulfillmentChannels[name] {
				open = append(open, capitalize(name))
			}
		}
		if len(open) > 0 {
			label := "Available: " + strings.Join(open, ", ")
			return availableDecision(price, label, fmt.Sprintf("%d of %d fulfillment channels open", len(open), len(sig.FulfillmentChannels)))
		}
		return unavailableDecision(price, "Unavailable", "no fulfillment channel reports availability")
	}

	// No channel regions were found; fall back to the plain control scan.
	return decideSingleChannel(price, sig)
}
