package scrape

import "strings"

// SignalRules parameterize the availability extractor per retailer.
type SignalRules struct {
	// ActionLabels is the allow-list of primary-action labels. A control
	// counts only when its normalized label EXACTLY equals an entry;
	// substring matching would accept compound labels like
	// "add to cart (unavailable)".
	ActionLabels []string

	// UnavailableLabels is the deny-list of explicit stock-out labels.
	UnavailableLabels []string

	// Channels names the retailer's fulfillment channels in their declared
	// stable order. Empty for single-channel retailers.
	Channels []string
}

// Positive and negative markers for fulfillment-channel region text.
var channelPositiveMarkers = []string{"Arrives", "Ready", "Available", "Get it"}

const channelNegativeMarker = "Not available"

// AvailabilitySignals is everything the page said about purchasability,
// reduced to booleans plus the verbatim status texts used for dealbreaker
// matching.
type AvailabilitySignals struct {
	HasEnabledPrimaryAction    bool
	HasExplicitUnavailableText bool
	ActionLabel                string
	FulfillmentChannels        map[string]bool
	// RawStatusTexts preserves every human-readable status/button/error
	// string found on the page, in document order and verbatim. This is
	// the "read it like a human" fallback channel.
	RawStatusTexts []string
}

// ExtractSignals derives availability signals from the snapshot under the
// retailer-supplied rules. Pure; absent elements yield zero values, and it
// never panics.
func ExtractSignals(snap *Snapshot, rules SignalRules) AvailabilitySignals {
	var sig AvailabilitySignals

	for _, ctl := range snap.Controls {
		label := normalizeLabel(ctl.Label)
		if label == "" {
			continue
		}

		if !sig.HasEnabledPrimaryAction &&
			!ctl.Disabled && ctl.Width > 0 && ctl.Height > 0 &&
			containsExact(rules.ActionLabels, label) {
			sig.HasEnabledPrimaryAction = true
			sig.ActionLabel = strings.TrimSpace(ctl.Label)
		}

		// Guard against compound labels ("pickup unavailable") and
		// mis-tokenized price strings being misread as stock-outs.
		if containsExact(rules.UnavailableLabels, label) &&
			!strings.Contains(label, "pickup") &&
			!strings.Contains(label, "$") {
			sig.HasExplicitUnavailableText = true
		}
	}

	if len(rules.Channels) > 0 {
		sig.FulfillmentChannels = make(map[string]bool, len(rules.Channels))
		for _, name := range rules.Channels {
			text, ok := snap.ChannelTexts[name]
			if !ok {
				continue
			}
			sig.FulfillmentChannels[name] = channelAvailable(text)
		}
	}

	sig.RawStatusTexts = collectStatusTexts(snap)
	return sig
}

// channelAvailable classifies one fulfillment channel's status region.
func channelAvailable(text string) bool {
	if strings.Contains(text, channelNegativeMarker) {
		return false
	}
	for _, marker := range channelPositiveMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// collectStatusTexts merges the snapshot's status region texts with any
// control labels the status collection missed. Status regions come first
// (in document order); they already include button texts on pages where
// the interrogation script saw them.
func collectStatusTexts(snap *Snapshot) []string {
	seen := make(map[string]struct{}, len(snap.StatusTexts))
	texts := make([]string, 0, len(snap.StatusTexts)+len(snap.Controls))

	for _, t := range snap.StatusTexts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		texts = append(texts, t)
		seen[t] = struct{}{}
	}
	for _, ctl := range snap.Controls {
		label := strings.TrimSpace(ctl.Label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		texts = append(texts, label)
		seen[label] = struct{}{}
	}
	return texts
}

// normalizeLabel trims and lower-cases a control label, collapsing inner
// whitespace runs so multi-line button markup compares cleanly.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func containsExact(list []string, label string) bool {
	for _, entry := range list {
		if label == entry {
			return true
		}
	}
	return false
}
