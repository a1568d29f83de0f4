package news

import (
	"sort"
	"strings"
	"time"
)

// SummaryLimit bounds adapter-produced summaries.
const SummaryLimit = 200

// Truncate cuts s to max runes, appending an ellipsis marker when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// RemoveDuplicates drops items whose case-folded trimmed title was already
// seen; the first occurrence wins. Near-duplicate stories with differently
// worded headlines are not detected, and two distinct stories sharing a
// generic title collapse into one.
func RemoveDuplicates(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SortAndLimit orders items by relevance score descending, breaking ties by
// recency, and cuts the result to limit.
func SortAndLimit(items []Item, limit int) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RelevanceScore != sorted[j].RelevanceScore {
			return sorted[i].RelevanceScore > sorted[j].RelevanceScore
		}
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// PrioritizePortfolio boosts items mentioning any portfolio symbol by +15 and
// moves them to the front. Relative order inside each group is preserved.
// Runs on the already ranked and truncated list.
func PrioritizePortfolio(items []Item, symbols []string) []Item {
	if len(symbols) == 0 {
		return items
	}

	portfolio := make([]Item, 0, len(items))
	other := make([]Item, 0, len(items))

	for _, item := range items {
		if mentionsPortfolio(item, symbols) {
			item.RelevanceScore += 15
			portfolio = append(portfolio, item)
		} else {
			other = append(other, item)
		}
	}
	return append(portfolio, other...)
}

func mentionsPortfolio(item Item, symbols []string) bool {
	content := strings.ToLower(item.Title + " " + item.Summary)
	for _, symbol := range symbols {
		s := strings.ToLower(symbol)
		if strings.Contains(content, s) || strings.Contains(content, "$"+s) || item.Symbol == symbol {
			return true
		}
	}
	return false
}

// Fallback returns the canned items served when every live source came back
// empty. The dashboard should never render an empty feed.
func Fallback() []Item {
	now := time.Now()
	return []Item{
		{
			ID:          "fallback_1",
			Title:       "Market Update: Tech Stocks Show Mixed Performance",
			Summary:     "Technology stocks displayed varied performance today as investors weigh quarterly earnings results and market outlook.",
			URL:         "#",
			PublishedAt: now.Add(-2 * time.Hour),
			Sentiment:   SentimentNeutral,
			Source:      "Market Wire",
			Category:    CategoryMarket,
		},
		{
			ID:          "fallback_2",
			Title:       "Federal Reserve Maintains Current Interest Rate Policy",
			Summary:     "The Federal Reserve announced it will maintain current interest rates, citing ongoing economic stability and inflation targets.",
			URL:         "#",
			PublishedAt: now.Add(-4 * time.Hour),
			Sentiment:   SentimentNeutral,
			Source:      "Financial News",
			Category:    CategoryMarket,
		},
	}
}
