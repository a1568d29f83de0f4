package news

import "time"

// Sentiment buckets every provider payload is mapped into.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Category classifies a news item for post-hoc filtering by the dashboard.
type Category string

const (
	CategoryMarket   Category = "market"
	CategoryStock    Category = "stock"
	CategoryCrypto   Category = "crypto"
	CategoryEarnings Category = "earnings"
	CategoryGeneral  Category = "general"
)

// Engagement holds provider-specific interaction counts. Informational only;
// the reddit adapter additionally feeds upvotes/comments into relevance.
type Engagement struct {
	Upvotes  int `json:"upvotes,omitempty"`
	Comments int `json:"comments,omitempty"`
	Shares   int `json:"shares,omitempty"`
}

// Item is the canonical news unit produced by every source adapter.
// IDs are provider-namespaced ("reddit_abc", "finnhub_123") so batches
// merged from several providers never collide.
type Item struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Summary        string      `json:"summary"`
	URL            string      `json:"url"`
	Symbol         string      `json:"symbol,omitempty"`
	PublishedAt    time.Time   `json:"publishedAt"`
	Sentiment      Sentiment   `json:"sentiment"`
	Source         string      `json:"source"`
	Author         string      `json:"author,omitempty"`
	Category       Category    `json:"category"`
	ImageURL       string      `json:"imageUrl,omitempty"`
	RelevanceScore float64     `json:"relevanceScore,omitempty"`
	Engagement     *Engagement `json:"engagement,omitempty"`
}
