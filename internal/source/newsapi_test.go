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

func TestNewsAPIFetch_NoKeyShortCircuits(t *testing.T) {
	s := NewNewsAPISource("", "test-agent", time.Second)
	items, err := s.Fetch(context.Background(), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}

func TestNewsAPIFetch_MapsArticles(t *testing.T) {
	payload := map[string]interface{}{
		"articles": []map[string]interface{}{
			{
				"source":      map[string]interface{}{"name": "Reuters"},
				"author":      "Jane Doe",
				"title":       "AAPL shares rally on strong iPhone demand",
				"description": "Apple stock gained after upbeat channel checks.",
				"url":         "https://example.com/aapl-rally",
				"urlToImage":  "https://example.com/img.jpg",
				"publishedAt": "2026-08-20T14:30:00Z",
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "AAPL OR NVDA", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	s := NewNewsAPISource("test-key", "test-agent", 5*time.Second)
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background(), []string{"AAPL", "NVDA"})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))

	item := items[0]
	assert.Equal(t, "Reuters", item.Source)
	assert.Equal(t, "Jane Doe", item.Author)
	assert.Equal(t, news.SentimentPositive, item.Sentiment)
	// base 5 + 10 for the AAPL mention
	assert.Equal(t, 15.0, item.RelevanceScore)
	assert.Equal(t, 2026, item.PublishedAt.Year())
}

func TestNewsAPIFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewNewsAPISource("bad-key", "test-agent", 5*time.Second)
	s.baseURL = srv.URL

	_, err := s.Fetch(context.Background(), nil)
	assert.NotEqual(t, nil, err)
}
