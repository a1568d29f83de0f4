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

	"github.com/AkhilBod/portfolioAdvisor/internal/quota"
)

// 2026-08-12 is a Wednesday whose day of month is divisible by 3.
func openGate() *quota.Gate {
	return quota.NewGate(func() time.Time {
		return time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)
	}, nil)
}

func closedGate() *quota.Gate {
	return quota.NewGate(func() time.Time {
		return time.Date(2026, 8, 13, 9, 0, 0, 0, time.UTC)
	}, nil)
}

func TestTwitterFetch_GateClosedSpendsNothing(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s := NewTwitterSource("token", "test-agent", time.Second, closedGate(), nil)
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background(), []string{"AAPL"})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
	assert.Equal(t, false, called)
}

func TestTwitterFetch_NoSymbolsSpendsNothing(t *testing.T) {
	s := NewTwitterSource("token", "test-agent", time.Second, openGate(), nil)
	items, err := s.Fetch(context.Background(), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}

func TestTwitterFetch_QueryAndEngagementFilter(t *testing.T) {
	payload := map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"id":         "111",
				"text":       "$AAPL breaking out, strong volume",
				"created_at": "2026-08-12T08:00:00Z",
				"public_metrics": map[string]interface{}{
					"like_count":    150,
					"retweet_count": 40,
					"reply_count":   12,
				},
			},
			{
				"id":         "222",
				"text":       "nobody cares about this one",
				"created_at": "2026-08-12T08:05:00Z",
				"public_metrics": map[string]interface{}{
					"like_count":    5,
					"retweet_count": 2,
					"reply_count":   0,
				},
			},
		},
	}

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	s := NewTwitterSource("token", "test-agent", 5*time.Second, openGate(), map[string]string{"AAPL": "Apple"})
	s.baseURL = srv.URL

	items, err := s.Fetch(context.Background(), []string{"SOUN", "AAPL"})
	assert.Equal(t, nil, err)

	// AAPL outranks SOUN on the priority list, so the single call targets it.
	assert.Equal(t, true, strings.Contains(gotQuery, "($AAPL OR Apple)"))
	assert.Equal(t, true, strings.Contains(gotQuery, "-is:retweet"))

	// the low-engagement tweet is dropped
	assert.Equal(t, 1, len(items))
	item := items[0]
	assert.Equal(t, "twitter_111", item.ID)
	assert.Equal(t, "AAPL", item.Symbol)
	assert.Equal(t, "Twitter (Limited)", item.Source)
	assert.Equal(t, 150, item.Engagement.Upvotes)
	assert.Equal(t, 40, item.Engagement.Shares)
	// base 5 + cashtag 10 + engagement over 100
	assert.Equal(t, 20.0, item.RelevanceScore)
}

func TestTwitterRelevance_EngagementTiers(t *testing.T) {
	var tweet twitterTweet
	tweet.Text = "no cashtag"
	tweet.PublicMetrics.LikeCount = 1500

	assert.Equal(t, 20.0, twitterRelevance(tweet, "AAPL"))
}
