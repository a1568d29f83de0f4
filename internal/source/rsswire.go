package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

// RSSWireSource reads configured market-news RSS feeds. It complements the
// API-backed sources with wire coverage that needs no credentials; with no
// feeds configured it is inert.
type RSSWireSource struct {
	parser *gofeed.Parser
	feeds  []string
}

func NewRSSWireSource(feeds []string, timeout time.Duration, userAgent string) *RSSWireSource {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &RSSWireSource{parser: parser, feeds: feeds}
}

func (s *RSSWireSource) Name() string { return "rsswire" }

func (s *RSSWireSource) Fetch(ctx context.Context, symbols []string) ([]news.Item, error) {
	if len(s.feeds) == 0 {
		return nil, nil
	}

	var all []news.Item
	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			slog.Debug("rss feed fetch failed", "feed", feedURL, "error", err)
			continue
		}

		sourceName := feed.Title
		if sourceName == "" {
			sourceName = "RSS Wire"
		}

		for _, entry := range feed.Items {
			publishedAt := time.Now().UTC()
			if entry.PublishedParsed != nil {
				publishedAt = entry.PublishedParsed.UTC()
			}

			all = append(all, news.Item{
				ID:             "rsswire_" + shortID(entry.Link),
				Title:          entry.Title,
				Summary:        news.Truncate(entry.Description, news.SummaryLimit),
				URL:            entry.Link,
				PublishedAt:    publishedAt,
				Sentiment:      news.AnalyzeSentiment(entry.Title + " " + entry.Description),
				Source:         sourceName,
				Category:       news.Categorize(entry.Title + " " + entry.Description),
				RelevanceScore: rssRelevance(entry.Title+" "+entry.Description, symbols),
			})
		}
	}
	return all, nil
}

// rssRelevance sits between the social and dedicated-financial bases (6),
// plus 10 per portfolio symbol mentioned.
func rssRelevance(content string, symbols []string) float64 {
	return 6 + float64(10*symbolMentions(content, symbols))
}
