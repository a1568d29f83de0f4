package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
	"github.com/AkhilBod/portfolioAdvisor/internal/quota"
)

const twitterBaseURL = "https://api.twitter.com"

// TwitterSource is the quota-constrained adapter: the provider enforces a
// hard ceiling of 100 calls per month, so a calendar gate decides whether
// today's aggregation may spend a call at all, and the call is spent on a
// single symbol. Errors are never retried.
type TwitterSource struct {
	bearerToken  string
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	gate         *quota.Gate
	companyNames map[string]string
}

func NewTwitterSource(bearerToken, userAgent string, timeout time.Duration, gate *quota.Gate, companyNames map[string]string) *TwitterSource {
	if gate == nil {
		gate = quota.NewGate(nil, nil)
	}
	return &TwitterSource{
		bearerToken:  bearerToken,
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      twitterBaseURL,
		userAgent:    userAgent,
		gate:         gate,
		companyNames: companyNames,
	}
}

func (s *TwitterSource) Name() string { return "twitter" }

// Fetch performs at most one search call, and only on an eligible day with
// symbols supplied. The query is restricted to high-engagement tweets to
// maximize value per call, and results below 20 combined likes+retweets are
// discarded even though they counted against quota.
func (s *TwitterSource) Fetch(ctx context.Context, symbols []string) ([]news.Item, error) {
	if s.bearerToken == "" {
		return nil, nil
	}
	if !s.gate.Allowed() {
		slog.Debug("twitter gate closed, preserving monthly quota")
		return nil, nil
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	symbol := s.gate.PrimarySymbol(symbols)
	query := fmt.Sprintf("($%s OR %s) (min_retweets:10 OR min_faves:50) -is:retweet lang:en",
		symbol, s.companyName(symbol))

	endpoint := fmt.Sprintf(
		"%s/2/tweets/search/recent?query=%s&max_results=10&tweet.fields=created_at,author_id,public_metrics",
		s.baseURL, url.QueryEscape(query),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.bearerToken)
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter status %d", resp.StatusCode)
	}

	var raw twitterResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("twitter decode: %w", err)
	}

	// Advisory usage log; the monthly budget is enforced by the gate alone.
	slog.Info("twitter api call spent", "symbol", symbol, "date", time.Now().Format("2006-01-02"))

	items := make([]news.Item, 0, len(raw.Data))
	for _, tweet := range raw.Data {
		engagement := tweet.PublicMetrics.LikeCount + tweet.PublicMetrics.RetweetCount
		if engagement < 20 {
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			publishedAt = time.Now().UTC()
		}

		items = append(items, news.Item{
			ID:          "twitter_" + tweet.ID,
			Title:       tweetTitle(tweet.Text),
			Summary:     tweet.Text,
			URL:         "https://twitter.com/user/status/" + tweet.ID,
			Symbol:      symbol,
			PublishedAt: publishedAt,
			Sentiment:   news.AnalyzeSentiment(tweet.Text),
			Source:      "Twitter (Limited)",
			Category:    news.CategoryStock,
			Engagement: &news.Engagement{
				Upvotes:  tweet.PublicMetrics.LikeCount,
				Comments: tweet.PublicMetrics.ReplyCount,
				Shares:   tweet.PublicMetrics.RetweetCount,
			},
			RelevanceScore: twitterRelevance(tweet, symbol),
		})
	}
	return items, nil
}

func (s *TwitterSource) companyName(symbol string) string {
	if name, ok := s.companyNames[symbol]; ok {
		return name
	}
	return symbol
}

func tweetTitle(text string) string {
	return "💬 " + news.Truncate(text, 80)
}

// twitterRelevance starts at a base of 5, adds 10 when the tweet cashtags the
// symbol, and rewards total engagement in two steps.
func twitterRelevance(tweet twitterTweet, symbol string) float64 {
	score := 5.0

	if strings.Contains(tweet.Text, "$"+symbol) {
		score += 10
	}

	engagement := tweet.PublicMetrics.LikeCount + tweet.PublicMetrics.RetweetCount + tweet.PublicMetrics.ReplyCount
	if engagement > 100 {
		score += 5
	}
	if engagement > 1000 {
		score += 10
	}
	return score
}

type twitterResponse struct {
	Data []twitterTweet `json:"data"`
}

type twitterTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
}
