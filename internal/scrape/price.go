package scrape

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceUnknown is the display sentinel used whenever no price could be
// extracted.
const PriceUnknown = "—"

var (
	// currencyRe matches a rendered dollar amount: $<digits>[,digits]*[.digits{0,2}]
	currencyRe = regexp.MustCompile(`\$\d[\d,]*(?:\.\d{1,2})?`)

	// comparisonRe matches the lexical pattern of savings/was-price texts.
	// Struck-through comparison prices are excluded at extraction time so
	// policies never have to filter them.
	comparisonRe = regexp.MustCompile(`(?i)save|was`)
)

// PriceCandidate is one plausible purchase-price observation. Candidates
// are produced fresh per page analysis and discarded after a decision.
type PriceCandidate struct {
	RawText string
	Value   decimal.Decimal
	Visible bool
	FontPx  float64
	Top     float64
	Left    float64
}

// Band is a retailer-tunable realistic price range used to reject
// decorative or unrelated dollar amounts. The band is supplied by the
// retailer policy, never hard-coded in the extractor.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// NewBand builds a band from whole-dollar bounds.
func NewBand(min, max int64) Band {
	return Band{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

// Contains reports whether v falls inside the band (inclusive).
func (b Band) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Min) && v.LessThanOrEqual(b.Max)
}

// ExtractPrices scans the snapshot's price-like texts and returns the
// plausible purchase-price candidates within the policy-supplied band.
// Candidates whose containing text matches the savings/was pattern are
// dropped here. Off-screen or collapsed candidates are kept but marked
// not visible. Pure; returns an empty slice when nothing matches.
func ExtractPrices(snap *Snapshot, band Band) []PriceCandidate {
	candidates := make([]PriceCandidate, 0, len(snap.PriceTexts))
	viewport := snap.viewportHeight()

	for _, pt := range snap.PriceTexts {
		if comparisonRe.MatchString(pt.Text) || comparisonRe.MatchString(pt.Context) {
			continue
		}

		match := currencyRe.FindString(pt.Text)
		if match == "" {
			continue
		}

		value, ok := ParsePrice(match)
		if !ok || !band.Contains(value) {
			continue
		}

		visible := pt.Height > 0 && pt.Top >= 0 && pt.Top < viewport
		candidates = append(candidates, PriceCandidate{
			RawText: pt.Text,
			Value:   value,
			Visible: visible,
			FontPx:  pt.FontPx,
			Top:     pt.Top,
			Left:    pt.Left,
		})
	}

	return candidates
}

// ParsePrice parses a dollar amount out of text. Thousands separators are
// stripped before parsing. Returns false when the text carries no currency
// pattern or the value is negative.
func ParsePrice(text string) (decimal.Decimal, bool) {
	match := currencyRe.FindString(text)
	if match == "" {
		return decimal.Decimal{}, false
	}

	numeric := strings.ReplaceAll(strings.TrimPrefix(match, "$"), ",", "")
	value, err := decimal.NewFromString(numeric)
	if err != nil || value.IsNegative() {
		return decimal.Decimal{}, false
	}
	return value, true
}

// FormatPrice renders a price for display, e.g. "$349.99".
func FormatPrice(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}
