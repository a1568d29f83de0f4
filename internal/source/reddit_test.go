package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

func redditPayload(subreddit string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"children": []map[string]interface{}{
				{
					"data": map[string]interface{}{
						"id":           "abc123",
						"title":        "NVDA earnings blow past estimates",
						"selftext":     "Massive beat, guidance raised. $NVDA to the moon.",
						"created_utc":  1756300000.0,
						"score":        450,
						"num_comments": 120,
						"author":       "quantfan",
						"subreddit":    subreddit,
						"permalink":    "/r/" + subreddit + "/comments/abc123/nvda_earnings/",
						"thumbnail":    "https://i.redd.it/thumb.jpg",
					},
				},
			},
		},
	}
}

func TestRedditFetch_MapsPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		parts := strings.Split(r.URL.Path, "/")
		json.NewEncoder(w).Encode(redditPayload(parts[2]))
	}))
	defer srv.Close()

	s := NewRedditSource([]string{"stocks"}, "test-agent", 5*time.Second)
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background(), []string{"NVDA"})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))

	item := items[0]
	assert.Equal(t, "reddit_abc123", item.ID)
	assert.Equal(t, "r/stocks", item.Source)
	assert.Equal(t, "quantfan", item.Author)
	assert.Equal(t, news.CategoryMarket, item.Category)
	assert.Equal(t, "https://i.redd.it/thumb.jpg", item.ImageURL)
	assert.Equal(t, 450, item.Engagement.Upvotes)
	assert.Equal(t, 120, item.Engagement.Comments)
	// upvote cap 4.5 + comment cap 3 + symbol mention 10
	assert.Equal(t, 17.5, item.RelevanceScore)
}

func TestRedditFetch_FailingSubredditIsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/r/investing/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		parts := strings.Split(r.URL.Path, "/")
		json.NewEncoder(w).Encode(redditPayload(parts[2]))
	}))
	defer srv.Close()

	s := NewRedditSource([]string{"investing", "stocks"}, "test-agent", 5*time.Second)
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background(), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "r/stocks", items[0].Source)
}

func TestRedditRelevance_EngagementCaps(t *testing.T) {
	post := redditPost{Score: 100000, NumComments: 100000, Title: "no tickers here"}
	assert.Equal(t, 8.0, redditRelevance(post, nil))
}
