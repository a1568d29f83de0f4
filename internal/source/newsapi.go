package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

const newsAPIBaseURL = "https://newsapi.org"

// NewsAPISource pulls professional press coverage from NewsAPI's /everything
// endpoint. Without an API key the source short-circuits to empty.
type NewsAPISource struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewNewsAPISource(apiKey, userAgent string, timeout time.Duration) *NewsAPISource {
	return &NewsAPISource{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    newsAPIBaseURL,
		userAgent:  userAgent,
	}
}

func (s *NewsAPISource) Name() string { return "newsapi" }

func (s *NewsAPISource) Fetch(ctx context.Context, symbols []string) ([]news.Item, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	query := "stock market OR investing OR finance"
	if len(symbols) > 0 {
		query = strings.Join(symbols, " OR ")
	}

	endpoint := fmt.Sprintf(
		"%s/v2/everything?q=%s&sortBy=publishedAt&language=en&pageSize=15&apiKey=%s",
		s.baseURL, url.QueryEscape(query), s.apiKey,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi status %d", resp.StatusCode)
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}

	items := make([]news.Item, 0, len(raw.Articles))
	for _, article := range raw.Articles {
		summary := article.Description
		if summary == "" && article.Content != "" {
			summary = news.Truncate(article.Content, news.SummaryLimit)
		}

		publishedAt, err := time.Parse(time.RFC3339, article.PublishedAt)
		if err != nil {
			publishedAt = time.Now().UTC()
		}

		items = append(items, news.Item{
			ID:             "newsapi_" + shortID(article.URL),
			Title:          article.Title,
			Summary:        summary,
			URL:            article.URL,
			PublishedAt:    publishedAt,
			Sentiment:      news.AnalyzeSentiment(article.Title + " " + article.Description),
			Source:         article.Source.Name,
			Author:         article.Author,
			Category:       news.Categorize(article.Title + " " + article.Description),
			ImageURL:       article.URLToImage,
			RelevanceScore: newsAPIRelevance(article, symbols),
		})
	}
	return items, nil
}

// newsAPIRelevance starts from a base of 5 and adds 10 per portfolio symbol
// mentioned in the headline or description.
func newsAPIRelevance(article newsAPIArticle, symbols []string) float64 {
	return 5 + float64(10*symbolMentions(article.Title+" "+article.Description, symbols))
}

type newsAPIResponse struct {
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}
