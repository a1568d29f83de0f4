// Package aggregator fans requests out to every configured news source and
// folds the results into a single deduplicated, ranked feed.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AkhilBod/portfolioAdvisor/internal/metrics"
	"github.com/AkhilBod/portfolioAdvisor/internal/news"
	"github.com/AkhilBod/portfolioAdvisor/internal/ratelimit"
	"github.com/AkhilBod/portfolioAdvisor/internal/source"
)

const defaultLimit = 20

// twitterSymbolCap bounds how many portfolio symbols are forwarded to the
// quota-constrained source.
const twitterSymbolCap = 3

type Service struct {
	sources []source.Source
	twitter source.Source
	limiter *ratelimit.Limiter
	metrics *metrics.Metrics
}

// New builds a Service over the freely-callable sources. The twitter source
// is kept apart because its monthly call budget demands serialized, gated
// access rather than participation in the parallel fan-out; pass nil when it
// is not configured. The limiter caps daily requests per provider; a nil
// limiter means no caps.
func New(sources []source.Source, twitter source.Source, limiter *ratelimit.Limiter, m *metrics.Metrics) *Service {
	if limiter == nil {
		limiter = ratelimit.NewLimiter(nil)
	}
	if m == nil {
		m = metrics.Global
	}
	return &Service{sources: sources, twitter: twitter, limiter: limiter, metrics: m}
}

// GetComprehensiveNews queries every source, merges the results, removes
// duplicate stories, and returns the top items ranked by relevance. A source
// failure never fails the aggregation; if every source comes back empty the
// canned fallback feed is returned so callers always have something to show.
func (s *Service) GetComprehensiveNews(ctx context.Context, symbols []string, limit int) []news.Item {
	if limit <= 0 {
		limit = defaultLimit
	}
	start := time.Now()

	results := make([][]news.Item, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			if !s.limiter.TryUse(src.Name()) {
				return
			}
			items, err := src.Fetch(ctx, symbols)
			if err != nil {
				s.metrics.IncrementSourceFailures()
				slog.Warn("news source failed", "source", src.Name(), "error", err)
				return
			}
			results[i] = items
		}(i, src)
	}
	wg.Wait()
	s.metrics.AddSourcesQueried(len(s.sources))

	var all []news.Item
	for _, items := range results {
		all = append(all, items...)
	}

	// Twitter runs after the fan-out so a slow gate check or call never
	// delays the main sources, and its failure is only worth a debug line.
	if s.twitter != nil && len(symbols) > 0 {
		capped := symbols
		if len(capped) > twitterSymbolCap {
			capped = capped[:twitterSymbolCap]
		}
		tweets, err := s.twitter.Fetch(ctx, capped)
		if err != nil {
			slog.Debug("twitter source failed", "error", err)
		} else {
			if len(tweets) > 0 {
				s.metrics.IncrementTwitterCallsSpent()
			}
			all = append(all, tweets...)
		}
	}

	s.metrics.AddItemsFetched(len(all))

	if len(all) == 0 {
		slog.Warn("all news sources empty, serving fallback feed")
		s.metrics.IncrementFallbacksServed()
		s.metrics.SetError("all news sources returned no items")
		return news.Fallback()
	}

	deduped := news.RemoveDuplicates(all)
	s.metrics.AddDuplicatesFiltered(len(all) - len(deduped))

	top := news.SortAndLimit(deduped, limit)
	top = news.PrioritizePortfolio(top, symbols)

	s.metrics.RecordAggregationTime(time.Since(start))
	s.metrics.SetLastRun()

	slog.Info("news aggregation complete",
		"sources", len(s.sources),
		"fetched", len(all),
		"returned", len(top),
		"duration_ms", time.Since(start).Milliseconds())

	return top
}
