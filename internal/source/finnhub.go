package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

// FinnhubSource pulls general market news plus per-symbol company news
// through the official Finnhub SDK. Without an API key the source
// short-circuits to empty.
type FinnhubSource struct {
	client *finnhub.DefaultApiService
	now    func() time.Time
}

func NewFinnhubSource(apiKey string) *FinnhubSource {
	s := &FinnhubSource{now: time.Now}
	if apiKey == "" {
		return s
	}

	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	s.client = finnhub.NewAPIClient(cfg).DefaultApi
	return s
}

func (s *FinnhubSource) Name() string { return "finnhub" }

// Fetch issues one general market-news request and one company-news request
// per symbol over the last 7 days. Partial failures are logged and skipped;
// an error is returned only when every request failed.
func (s *FinnhubSource) Fetch(ctx context.Context, symbols []string) ([]news.Item, error) {
	if s.client == nil {
		return nil, nil
	}

	var all []news.Item
	var lastErr error
	requests := 0
	failures := 0

	requests++
	market, _, err := s.client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		slog.Debug("finnhub market news failed", "error", err)
		failures++
		lastErr = err
	} else {
		for _, article := range market {
			all = append(all, s.convertMarket(article, symbols))
		}
	}

	from := s.now().AddDate(0, 0, -7).Format("2006-01-02")
	to := s.now().Format("2006-01-02")

	for _, symbol := range symbols {
		requests++
		company, _, err := s.client.CompanyNews(ctx).Symbol(symbol).From(from).To(to).Execute()
		if err != nil {
			slog.Debug("finnhub company news failed", "symbol", symbol, "error", err)
			failures++
			lastErr = err
			continue
		}
		for _, article := range company {
			all = append(all, s.convertCompany(article, symbol, symbols))
		}
	}

	if failures == requests {
		return nil, fmt.Errorf("finnhub: all requests failed: %w", lastErr)
	}
	return all, nil
}

func (s *FinnhubSource) convertMarket(article finnhub.MarketNews, symbols []string) news.Item {
	return news.Item{
		ID:             "finnhub_" + strconv.FormatInt(article.GetId(), 10),
		Title:          article.GetHeadline(),
		Summary:        news.Truncate(article.GetSummary(), news.SummaryLimit),
		URL:            article.GetUrl(),
		PublishedAt:    time.Unix(article.GetDatetime(), 0).UTC(),
		Sentiment:      news.AnalyzeSentiment(article.GetHeadline() + " " + article.GetSummary()),
		Source:         sourceOrDefault(article.GetSource()),
		Category:       news.CategoryStock,
		ImageURL:       article.GetImage(),
		RelevanceScore: finnhubRelevance("", symbols),
	}
}

func (s *FinnhubSource) convertCompany(article finnhub.CompanyNews, symbol string, symbols []string) news.Item {
	related := article.GetRelated()
	if related == "" {
		related = symbol
	}

	return news.Item{
		ID:             "finnhub_" + strconv.FormatInt(article.GetId(), 10),
		Title:          article.GetHeadline(),
		Summary:        news.Truncate(article.GetSummary(), news.SummaryLimit),
		URL:            article.GetUrl(),
		Symbol:         related,
		PublishedAt:    time.Unix(article.GetDatetime(), 0).UTC(),
		Sentiment:      news.AnalyzeSentiment(article.GetHeadline() + " " + article.GetSummary()),
		Source:         sourceOrDefault(article.GetSource()),
		Category:       news.CategoryStock,
		ImageURL:       article.GetImage(),
		RelevanceScore: finnhubRelevance(related, symbols),
	}
}

// finnhubRelevance uses a higher base (7) reflecting a dedicated financial
// provider, plus 15 when the article's symbol is in the requested set.
func finnhubRelevance(symbol string, symbols []string) float64 {
	score := 7.0
	if symbol != "" && containsSymbol(symbols, symbol) {
		score += 15
	}
	return score
}

func sourceOrDefault(source string) string {
	if source == "" {
		return "Finnhub"
	}
	return source
}
