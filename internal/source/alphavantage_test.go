package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

func TestAlphaVantageFetch_MapsFeed(t *testing.T) {
	payload := map[string]interface{}{
		"feed": []map[string]interface{}{
			{
				"title":                   "NVDA supply chain update",
				"summary":                 "Checks point to improving GPU availability.",
				"url":                     "https://example.com/nvda-supply",
				"source":                  "Benzinga",
				"authors":                 []string{"Market Desk"},
				"banner_image":            "https://example.com/banner.jpg",
				"time_published":          "20260820T120000",
				"overall_sentiment_score": 0.31,
				"ticker_sentiment": []map[string]interface{}{
					{"ticker": "NVDA"},
					{"ticker": "AMD"},
				},
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NEWS_SENTIMENT", r.URL.Query().Get("function"))
		assert.Equal(t, "NVDA,AMD", r.URL.Query().Get("tickers"))
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	s := NewAlphaVantageSource("test-key", 5*time.Second)
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background(), []string{"NVDA", "AMD"})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))

	item := items[0]
	assert.Equal(t, news.SentimentPositive, item.Sentiment)
	assert.Equal(t, "Benzinga", item.Source)
	assert.Equal(t, "Market Desk", item.Author)
	assert.Equal(t, news.CategoryStock, item.Category)
	// base 8 + 12 for each matching ticker-sentiment entry
	assert.Equal(t, 32.0, item.RelevanceScore)
	assert.Equal(t, time.August, item.PublishedAt.Month())
}

func TestAlphaVantageFetch_DefaultTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, alphaVantageDefaultTickers, r.URL.Query().Get("tickers"))
		json.NewEncoder(w).Encode(map[string]interface{}{"feed": []interface{}{}})
	}))
	defer srv.Close()

	s := NewAlphaVantageSource("test-key", 5*time.Second)
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background(), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}

func TestAlphaVantageFetch_NoKeyShortCircuits(t *testing.T) {
	s := NewAlphaVantageSource("", time.Second)
	items, err := s.Fetch(context.Background(), []string{"AAPL"})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}
