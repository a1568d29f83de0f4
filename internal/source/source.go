// Package source holds one adapter per external news provider. Every adapter
// converts its provider payload into the canonical news.Item shape and
// computes a provider-specific relevance score. Adapters are pure
// network-then-transform functions; failures surface as an error the
// aggregator treats as zero results.
package source

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

// Source is the adapter contract. Fetch scopes the provider query to the
// given symbols when present, otherwise queries the general market.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) ([]news.Item, error)
}

// shortID derives a compact provider-local id from a URL.
func shortID(url string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(url))
	if len(encoded) > 10 {
		encoded = encoded[:10]
	}
	return encoded
}

// symbolMentions counts how many of the symbols appear in content, matching
// both bare and $-prefixed forms.
func symbolMentions(content string, symbols []string) int {
	lower := strings.ToLower(content)
	count := 0
	for _, symbol := range symbols {
		s := strings.ToLower(symbol)
		if strings.Contains(lower, s) || strings.Contains(lower, "$"+s) {
			count++
		}
	}
	return count
}

func containsSymbol(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
