package watch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/shopspring/decimal"
)

// Product is one tracked listing: where to look, and the price ceiling
// under which an availability alert is worth firing. A zero ceiling means
// any price qualifies.
type Product struct {
	Name         string          `json:"name"`
	URL          string          `json:"url"`
	PriceCeiling decimal.Decimal `json:"price_ceiling"`
	Disabled     bool            `json:"disabled,omitempty"`
}

// LoadWatchlist reads the JSON watchlist file. Entries with unusable URLs
// are rejected up front so the check loop never wastes a cycle on them.
func LoadWatchlist(path string) ([]Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist %s: %w", path, err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist %s: %w", path, err)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("watchlist %s is empty", path)
	}

	for i, p := range products {
		if p.URL == "" {
			return nil, fmt.Errorf("watchlist entry %d has no URL", i)
		}
		if _, err := url.Parse(p.URL); err != nil {
			return nil, fmt.Errorf("watchlist entry %d has unparseable URL %q: %w", i, p.URL, err)
		}
		if p.PriceCeiling.IsNegative() {
			return nil, fmt.Errorf("watchlist entry %d has negative price ceiling", i)
		}
	}

	return products, nil
}
