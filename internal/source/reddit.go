package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

const redditBaseURL = "https://www.reddit.com"

// RedditSource reads the hot feed of a fixed set of investing subreddits.
// Reddit's public JSON endpoints need no credentials, so this source is
// always available.
type RedditSource struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	subreddits []string
}

func NewRedditSource(subreddits []string, userAgent string, timeout time.Duration) *RedditSource {
	return &RedditSource{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    redditBaseURL,
		userAgent:  userAgent,
		subreddits: subreddits,
	}
}

func (s *RedditSource) Name() string { return "reddit" }

// Fetch queries all subreddits in parallel. A failing subreddit contributes
// nothing; the others still count.
func (s *RedditSource) Fetch(ctx context.Context, symbols []string) ([]news.Item, error) {
	var wg sync.WaitGroup
	results := make([][]news.Item, len(s.subreddits))

	for i, subreddit := range s.subreddits {
		wg.Add(1)
		go func(i int, subreddit string) {
			defer wg.Done()
			items, err := s.fetchSubreddit(ctx, subreddit, symbols)
			if err != nil {
				slog.Debug("subreddit fetch failed", "subreddit", subreddit, "error", err)
				return
			}
			results[i] = items
		}(i, subreddit)
	}
	wg.Wait()

	var all []news.Item
	for _, items := range results {
		all = append(all, items...)
	}
	return all, nil
}

func (s *RedditSource) fetchSubreddit(ctx context.Context, subreddit string, symbols []string) ([]news.Item, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=10", s.baseURL, subreddit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit status %d", resp.StatusCode)
	}

	var raw redditResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("reddit decode: %w", err)
	}

	items := make([]news.Item, 0, len(raw.Data.Children))
	for _, child := range raw.Data.Children {
		post := child.Data

		item := news.Item{
			ID:          "reddit_" + post.ID,
			Title:       post.Title,
			Summary:     news.Truncate(post.Selftext, news.SummaryLimit),
			URL:         "https://reddit.com" + post.Permalink,
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
			Sentiment:   news.AnalyzeSentiment(post.Title + " " + post.Selftext),
			Source:      "r/" + post.Subreddit,
			Author:      post.Author,
			Category:    news.CategoryMarket,
			Engagement: &news.Engagement{
				Upvotes:  post.Score,
				Comments: post.NumComments,
			},
			RelevanceScore: redditRelevance(post, symbols),
		}
		if strings.HasPrefix(post.Thumbnail, "http") {
			item.ImageURL = post.Thumbnail
		}
		items = append(items, item)
	}
	return items, nil
}

// redditRelevance scores a post from engagement (capped at 5 points from
// upvotes, 3 from comments) plus 10 per portfolio symbol mentioned.
func redditRelevance(post redditPost, symbols []string) float64 {
	score := math.Min(float64(post.Score)/100, 5)
	score += math.Min(float64(post.NumComments)/20, 3)
	score += float64(10 * symbolMentions(post.Title+" "+post.Selftext, symbols))
	return score
}

type redditResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Thumbnail   string  `json:"thumbnail"`
}
