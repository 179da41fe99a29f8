package scrape

import "mstern/restockwatch/internal/retailer"

// UnsupportedPolicy is the no-op variant for URLs no retailer table entry
// matched. It never reports availability.
type UnsupportedPolicy struct{}

func (UnsupportedPolicy) Retailer() retailer.Retailer { return retailer.Unsupported }

func (UnsupportedPolicy) Band() Band { return NewBand(1, 1000000) }

func (UnsupportedPolicy) Rules() SignalRules { return SignalRules{} }

func (UnsupportedPolicy) Decide(cands []PriceCandidate, sig AvailabilitySignals, pc PageContext) Decision {
	return unavailableDecision(nil, "Unsupported Retailer", "no extraction policy for this site")
}
