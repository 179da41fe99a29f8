package retailer

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Retailer identifies which per-site extraction policy applies to a URL.
// The set is closed: the engine is a small number of hand-tuned policies,
// not a plugin surface.
type Retailer int

const (
	Unsupported Retailer = iota
	BestBuy
	Target
	Canon
	Ricoh
)

// String returns the retailer's display name
func (r Retailer) String() string {
	switch r {
	case BestBuy:
		return "BestBuy"
	case Target:
		return "Target"
	case Canon:
		return "Canon"
	case Ricoh:
		return "Ricoh"
	default:
		return "Unsupported"
	}
}

// MarshalText implements encoding.TextMarshaler so results and alerts
// serialize the retailer as its name
func (r Retailer) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// NeedsBrowser reports whether the retailer's product pages are rendered
// client-side and need a real browser engine. Canon and Ricoh serve their
// price and stock state in the initial markup, so a plain fetch suffices.
func (r Retailer) NeedsBrowser() bool {
	switch r {
	case BestBuy, Target:
		return true
	default:
		return false
	}
}

// CheckTimeout returns the bound for one full check against this retailer.
// BestBuy pages are the slowest to settle (open-box variants load a second
// pricing payload), hence the wider bound.
func (r Retailer) CheckTimeout() time.Duration {
	if r == BestBuy {
		return 60 * time.Second
	}
	return 15 * time.Second
}

// Classification is the result of routing a URL to a retailer.
// Confidence is informational only and never affects the decision engine.
type Classification struct {
	Retailer   Retailer
	Confidence float64
	Reason     string
}

// domainTable maps domain substrings to retailers. Order matters only in
// that the first match wins.
var domainTable = []struct {
	substr   string
	retailer Retailer
}{
	{"bestbuy.com", BestBuy},
	{"target.com", Target},
	{"canon.com", Canon},
	{"usa.canon", Canon},
	{"ricoh-imaging", Ricoh},
	{"ricohimaging", Ricoh},
	{"us.ricoh", Ricoh},
}

// Classify routes a URL to a retailer by domain substring matching.
func Classify(rawURL string) Classification {
	u, err := url.Parse(rawURL)
	if err == nil && u.Host != "" {
		host := strings.ToLower(u.Host)
		for _, entry := range domainTable {
			if strings.Contains(host, entry.substr) {
				return Classification{
					Retailer:   entry.retailer,
					Confidence: 1.0,
					Reason:     fmt.Sprintf("host %q matches %q", host, entry.substr),
				}
			}
		}
		return Classification{
			Retailer:   Unsupported,
			Confidence: 1.0,
			Reason:     fmt.Sprintf("host %q matches no known retailer", host),
		}
	}

	// No parseable host; fall back to scanning the whole string
	lowered := strings.ToLower(rawURL)
	for _, entry := range domainTable {
		if strings.Contains(lowered, entry.substr) {
			return Classification{
				Retailer:   entry.retailer,
				Confidence: 0.5,
				Reason:     fmt.Sprintf("URL contains %q", entry.substr),
			}
		}
	}
	return Classification{
		Retailer:   Unsupported,
		Confidence: 0.0,
		Reason:     "no known retailer domain in URL",
	}
}
