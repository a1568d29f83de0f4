package news

import (
	"regexp"
	"strings"
)

var positiveWords = []string{
	"bullish", "up", "gain", "surge", "profit", "growth",
	"strong", "beat", "exceed", "optimistic", "buy", "rally",
}

var negativeWords = []string{
	"bearish", "down", "loss", "fall", "decline", "weak",
	"miss", "concern", "pessimistic", "sell", "crash",
}

var wordSplit = regexp.MustCompile(`\W+`)

// AnalyzeSentiment classifies free text by counting hits against the fixed
// positive/negative word lists. Majority wins, tie is neutral. Deterministic
// for identical input.
func AnalyzeSentiment(text string) Sentiment {
	words := wordSplit.Split(strings.ToLower(text), -1)

	var positive, negative int
	for _, w := range words {
		if containsWord(positiveWords, w) {
			positive++
		}
		if containsWord(negativeWords, w) {
			negative++
		}
	}

	if positive > negative {
		return SentimentPositive
	}
	if negative > positive {
		return SentimentNegative
	}
	return SentimentNeutral
}

// MapSentimentScore maps a provider-supplied numeric score into the three
// buckets. Thresholds follow Alpha Vantage's sentiment scale.
func MapSentimentScore(score float64) Sentiment {
	if score > 0.15 {
		return SentimentPositive
	}
	if score < -0.15 {
		return SentimentNegative
	}
	return SentimentNeutral
}

// Categorize picks the item category from keyword hits, most specific first.
func Categorize(text string) Category {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "earnings") || strings.Contains(lower, "quarterly"):
		return CategoryEarnings
	case strings.Contains(lower, "bitcoin") || strings.Contains(lower, "crypto"):
		return CategoryCrypto
	case strings.Contains(lower, "stock") || strings.Contains(lower, "share"):
		return CategoryStock
	case strings.Contains(lower, "market") || strings.Contains(lower, "index"):
		return CategoryMarket
	default:
		return CategoryGeneral
	}
}

func containsWord(list []string, w string) bool {
	for _, v := range list {
		if v == w {
			return true
		}
	}
	return false
}
