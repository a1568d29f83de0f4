package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

const (
	alphaVantageBaseURL        = "https://www.alphavantage.co"
	alphaVantageDefaultTickers = "AAPL,GOOGL,MSFT,TSLA,NVDA"
	alphaVantageTimeLayout     = "20060102T150405"
)

// AlphaVantageSource reads the NEWS_SENTIMENT feed. Alpha Vantage supplies a
// numeric sentiment score per article, so the shared keyword heuristic is not
// used here. Without an API key the source short-circuits to empty.
type AlphaVantageSource struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func NewAlphaVantageSource(apiKey string, timeout time.Duration) *AlphaVantageSource {
	return &AlphaVantageSource{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    alphaVantageBaseURL,
	}
}

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

func (s *AlphaVantageSource) Fetch(ctx context.Context, symbols []string) ([]news.Item, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	tickers := alphaVantageDefaultTickers
	if len(symbols) > 0 {
		tickers = strings.Join(symbols, ",")
	}

	endpoint := fmt.Sprintf(
		"%s/query?function=NEWS_SENTIMENT&tickers=%s&limit=20&apikey=%s",
		s.baseURL, tickers, s.apiKey,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage status %d", resp.StatusCode)
	}

	var raw avResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	items := make([]news.Item, 0, len(raw.Feed))
	for i, article := range raw.Feed {
		id := "alphavantage_" + shortID(article.URL)
		if article.URL == "" {
			id = fmt.Sprintf("alphavantage_%d", i)
		}

		publishedAt, err := time.Parse(alphaVantageTimeLayout, article.TimePublished)
		if err != nil {
			publishedAt = time.Now().UTC()
		}

		author := ""
		if len(article.Authors) > 0 {
			author = article.Authors[0]
		}

		items = append(items, news.Item{
			ID:             id,
			Title:          article.Title,
			Summary:        news.Truncate(article.Summary, news.SummaryLimit),
			URL:            article.URL,
			PublishedAt:    publishedAt,
			Sentiment:      news.MapSentimentScore(article.OverallSentimentScore),
			Source:         sourceOrDefaultAV(article.Source),
			Author:         author,
			Category:       news.CategoryStock,
			ImageURL:       article.BannerImage,
			RelevanceScore: alphaVantageRelevance(article, symbols),
		})
	}
	return items, nil
}

// alphaVantageRelevance uses the highest base (8) and adds 12 per
// ticker-sentiment entry that matches a requested symbol.
func alphaVantageRelevance(article avFeedItem, symbols []string) float64 {
	score := 8.0
	for _, ticker := range article.TickerSentiment {
		if containsSymbol(symbols, ticker.Ticker) {
			score += 12
		}
	}
	return score
}

func sourceOrDefaultAV(source string) string {
	if source == "" {
		return "Alpha Vantage"
	}
	return source
}

type avResponse struct {
	Feed []avFeedItem `json:"feed"`
}

type avFeedItem struct {
	Title                 string              `json:"title"`
	Summary               string              `json:"summary"`
	URL                   string              `json:"url"`
	Source                string              `json:"source"`
	Authors               []string            `json:"authors"`
	BannerImage           string              `json:"banner_image"`
	TimePublished         string              `json:"time_published"`
	OverallSentimentScore float64             `json:"overall_sentiment_score"`
	TickerSentiment       []avTickerSentiment `json:"ticker_sentiment"`
}

type avTickerSentiment struct {
	Ticker string `json:"ticker"`
}
