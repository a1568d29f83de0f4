// Package stocks serves current quotes for portfolio symbols, trying live
// providers in order of data quality and degrading to canned demo prices so
// the dashboard never renders empty.
package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

const (
	alphaVantageBaseURL = "https://www.alphavantage.co"
	yahooBaseURL        = "https://query1.finance.yahoo.com"
)

type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	High52Week    float64   `json:"high52Week,omitempty"`
	Low52Week     float64   `json:"low52Week,omitempty"`
	LastUpdated   time.Time `json:"lastUpdated"`
	IsDemo        bool      `json:"isDemo,omitempty"`
}

type Service struct {
	finnhub      *finnhub.DefaultApiService
	alphaKey     string
	httpClient   *http.Client
	alphaBaseURL string
	yahooBaseURL string
	userAgent    string
	now          func() time.Time
	randFloat    func() float64
}

// New builds the quote service. finnhubClient may be nil when no key is
// configured; the chain then starts at Alpha Vantage.
func New(finnhubClient *finnhub.DefaultApiService, alphaKey, userAgent string, timeout time.Duration) *Service {
	return &Service{
		finnhub:      finnhubClient,
		alphaKey:     alphaKey,
		httpClient:   &http.Client{Timeout: timeout},
		alphaBaseURL: alphaVantageBaseURL,
		yahooBaseURL: yahooBaseURL,
		userAgent:    userAgent,
		now:          time.Now,
		randFloat:    rand.Float64,
	}
}

// GetQuote tries each provider in turn and falls back to demo data when all
// of them fail. It never returns an error: price display degrades, it does
// not break.
func (s *Service) GetQuote(ctx context.Context, symbol string) Quote {
	type provider struct {
		name  string
		fetch func(context.Context, string) (Quote, error)
	}
	providers := []provider{
		{"finnhub", s.fromFinnhub},
		{"alphavantage", s.fromAlphaVantage},
		{"yahoo", s.fromYahoo},
	}

	for _, p := range providers {
		quote, err := p.fetch(ctx, symbol)
		if err != nil {
			slog.Debug("quote provider failed", "provider", p.name, "symbol", symbol, "error", err)
			continue
		}
		return quote
	}

	slog.Warn("all quote providers failed, serving demo data", "symbol", symbol)
	return s.demoQuote(symbol)
}

// GetQuotes fetches all symbols in parallel.
func (s *Service) GetQuotes(ctx context.Context, symbols []string) []Quote {
	quotes := make([]Quote, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			quotes[i] = s.GetQuote(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()
	return quotes
}

func (s *Service) fromFinnhub(ctx context.Context, symbol string) (Quote, error) {
	if s.finnhub == nil {
		return Quote{}, fmt.Errorf("finnhub not configured")
	}

	res, _, err := s.finnhub.Quote(ctx).Symbol(symbol).Execute()
	if err != nil {
		return Quote{}, fmt.Errorf("finnhub quote: %w", err)
	}

	price := float64(res.GetC())
	if price <= 0 {
		return Quote{}, fmt.Errorf("finnhub returned no price for %s", symbol)
	}

	previousClose := float64(res.GetPc())
	change := price - previousClose
	changePercent := 0.0
	if previousClose != 0 {
		changePercent = change / previousClose * 100
	}

	return Quote{
		Symbol:        symbol,
		Price:         round2(price),
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		High52Week:    float64(res.GetH()),
		Low52Week:     float64(res.GetL()),
		LastUpdated:   s.now().UTC(),
	}, nil
}

func (s *Service) fromAlphaVantage(ctx context.Context, symbol string) (Quote, error) {
	if s.alphaKey == "" {
		return Quote{}, fmt.Errorf("alpha vantage not configured")
	}

	endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		s.alphaBaseURL, symbol, s.alphaKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("alpha vantage quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("alpha vantage status %d", resp.StatusCode)
	}

	var raw struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Quote{}, fmt.Errorf("alpha vantage decode: %w", err)
	}
	if len(raw.GlobalQuote) == 0 {
		return Quote{}, fmt.Errorf("alpha vantage returned no quote for %s", symbol)
	}

	price, _ := strconv.ParseFloat(raw.GlobalQuote["05. price"], 64)
	if price <= 0 {
		return Quote{}, fmt.Errorf("alpha vantage returned no price for %s", symbol)
	}
	change, _ := strconv.ParseFloat(raw.GlobalQuote["09. change"], 64)
	changePercent, _ := strconv.ParseFloat(
		strings.TrimSuffix(raw.GlobalQuote["10. change percent"], "%"), 64)
	volume, _ := strconv.ParseInt(raw.GlobalQuote["06. volume"], 10, 64)

	lastUpdated := s.now().UTC()
	if day, err := time.Parse("2006-01-02", raw.GlobalQuote["07. latest trading day"]); err == nil {
		lastUpdated = day
	}

	return Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		LastUpdated:   lastUpdated,
	}, nil
}

func (s *Service) fromYahoo(ctx context.Context, symbol string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", s.yahooBaseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("yahoo status %d", resp.StatusCode)
	}

	var raw yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Quote{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if len(raw.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("yahoo returned no chart for %s", symbol)
	}

	result := raw.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return Quote{}, fmt.Errorf("yahoo returned no closes for %s", symbol)
	}

	closes := result.Indicators.Quote[0].Close
	price := closes[len(closes)-1]
	previousClose := result.Meta.PreviousClose
	change := price - previousClose
	changePercent := 0.0
	if previousClose != 0 {
		changePercent = change / previousClose * 100
	}

	var volume int64
	if volumes := result.Indicators.Quote[0].Volume; len(volumes) > 0 {
		volume = volumes[len(volumes)-1]
	}

	return Quote{
		Symbol:        symbol,
		Price:         round2(price),
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		Volume:        volume,
		LastUpdated:   s.now().UTC(),
	}, nil
}

// demoQuote returns realistic canned prices for the portfolio symbols and
// randomized placeholders for anything else.
func (s *Service) demoQuote(symbol string) Quote {
	if quote, ok := demoQuotes[symbol]; ok {
		quote.LastUpdated = s.now().UTC()
		quote.IsDemo = true
		return quote
	}

	return Quote{
		Symbol:        symbol,
		Price:         round2(100 + s.randFloat()*50),
		Change:        round2((s.randFloat() - 0.5) * 10),
		ChangePercent: round2((s.randFloat() - 0.5) * 10),
		Volume:        int64(s.randFloat() * 1000000),
		LastUpdated:   s.now().UTC(),
		IsDemo:        true,
	}
}

var demoQuotes = map[string]Quote{
	"AAPL": {Symbol: "AAPL", Price: 229.87, Change: 2.45, ChangePercent: 1.08, Volume: 45678123, High52Week: 237.23, Low52Week: 164.08},
	"SOUN": {Symbol: "SOUN", Price: 15.23, Change: 0.89, ChangePercent: 6.21, Volume: 2345678, High52Week: 19.45, Low52Week: 2.89},
	"IONQ": {Symbol: "IONQ", Price: 42.16, Change: -1.87, ChangePercent: -4.25, Volume: 1234567, High52Week: 76.28, Low52Week: 8.90},
	"PLTR": {Symbol: "PLTR", Price: 89.45, Change: -3.22, ChangePercent: -3.47, Volume: 3456789, High52Week: 92.11, Low52Week: 15.66},
	"NVDA": {Symbol: "NVDA", Price: 195.78, Change: 8.91, ChangePercent: 4.77, Volume: 28901234, High52Week: 200.43, Low52Week: 108.13},
	"OKLO": {Symbol: "OKLO", Price: 34.50, Change: 1.25, ChangePercent: 3.76, Volume: 1567890, High52Week: 45.20, Low52Week: 8.40},
	"TMC":  {Symbol: "TMC", Price: 2.89, Change: -0.15, ChangePercent: -4.93, Volume: 892345, High52Week: 8.90, Low52Week: 1.45},
	"BBAI": {Symbol: "BBAI", Price: 12.67, Change: 0.34, ChangePercent: 2.76, Volume: 456789, High52Week: 28.50, Low52Week: 1.89},
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				PreviousClose float64 `json:"previousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// Headlines returns recent provider headlines for one symbol using the same
// sentiment mapping as the news feed. It is a convenience for symbol detail
// views and is served by Alpha Vantage only.
func (s *Service) Headlines(ctx context.Context, symbol string, limit int) ([]news.Item, error) {
	if s.alphaKey == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	endpoint := fmt.Sprintf("%s/query?function=NEWS_SENTIMENT&tickers=%s&apikey=%s&limit=%d",
		s.alphaBaseURL, symbol, s.alphaKey, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("headlines fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headlines status %d", resp.StatusCode)
	}

	var raw struct {
		Feed []struct {
			Title          string  `json:"title"`
			Summary        string  `json:"summary"`
			URL            string  `json:"url"`
			Source         string  `json:"source"`
			TimePublished  string  `json:"time_published"`
			SentimentScore float64 `json:"overall_sentiment_score"`
		} `json:"feed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("headlines decode: %w", err)
	}

	items := make([]news.Item, 0, len(raw.Feed))
	for _, entry := range raw.Feed {
		publishedAt := s.now().UTC()
		if ts, err := time.Parse("20060102T150405", entry.TimePublished); err == nil {
			publishedAt = ts
		}
		items = append(items, news.Item{
			Title:       entry.Title,
			Summary:     entry.Summary,
			URL:         entry.URL,
			Symbol:      symbol,
			Source:      entry.Source,
			PublishedAt: publishedAt,
			Sentiment:   news.MapSentimentScore(entry.SentimentScore),
			Category:    news.CategoryStock,
		})
	}
	return items, nil
}
