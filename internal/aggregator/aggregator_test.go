package aggregator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AkhilBod/portfolioAdvisor/internal/metrics"
	"github.com/AkhilBod/portfolioAdvisor/internal/news"
	"github.com/AkhilBod/portfolioAdvisor/internal/ratelimit"
	"github.com/AkhilBod/portfolioAdvisor/internal/source"
)

type fakeSource struct {
	name    string
	items   []news.Item
	err     error
	calls   int
	symbols []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, symbols []string) ([]news.Item, error) {
	f.calls++
	f.symbols = symbols
	return f.items, f.err
}

func item(id, title string, score float64) news.Item {
	return news.Item{
		ID:             id,
		Title:          title,
		URL:            "https://example.com/" + id,
		PublishedAt:    time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Sentiment:      news.SentimentNeutral,
		Source:         "test",
		Category:       news.CategoryGeneral,
		RelevanceScore: score,
	}
}

func TestGetComprehensiveNews_AllSourcesFailServesFallback(t *testing.T) {
	m := &metrics.Metrics{IsHealthy: true}
	svc := New([]source.Source{
		&fakeSource{name: "a", err: errors.New("boom")},
		&fakeSource{name: "b", err: errors.New("down")},
	}, nil, nil, m)

	got := svc.GetComprehensiveNews(context.Background(), nil, 10)

	if len(got) != 2 {
		t.Fatalf("expected 2 fallback items, got %d", len(got))
	}
	for _, n := range got {
		if n.URL != "#" {
			t.Errorf("fallback item %s has url %q, want #", n.ID, n.URL)
		}
	}

	// a fallback run must surface on /health as degraded
	stats := m.GetStats()
	if stats["is_healthy"].(bool) {
		t.Error("expected degraded health after serving fallback")
	}
	if stats["fallbacks_served"].(int64) != 1 {
		t.Errorf("fallbacks_served = %v, want 1", stats["fallbacks_served"])
	}
}

func TestGetComprehensiveNews_MergesDedupesAndRanks(t *testing.T) {
	a := &fakeSource{name: "a", items: []news.Item{
		item("a1", "NVDA crushes earnings", 30),
		item("a2", "Markets drift sideways", 5),
		item("a3", "Fed minutes released", 8),
	}}
	b := &fakeSource{name: "b", items: []news.Item{
		item("b1", "nvda crushes earnings", 50), // duplicate title, first wins
		item("b2", "Oil prices slip", 12),
	}}

	svc := New([]source.Source{a, b}, nil, nil, &metrics.Metrics{})
	got := svc.GetComprehensiveNews(context.Background(), []string{"NVDA"}, 10)

	if len(got) != 4 {
		t.Fatalf("expected 4 items after dedupe, got %d", len(got))
	}
	if got[0].ID != "a1" {
		t.Errorf("expected the NVDA story first, got %s", got[0].ID)
	}
	// boosted by the portfolio mention on top of its own score
	if got[0].RelevanceScore != 45 {
		t.Errorf("expected boosted score 45, got %v", got[0].RelevanceScore)
	}
	for _, n := range got {
		if n.ID == "b1" {
			t.Error("duplicate b1 should have been dropped")
		}
	}
}

func TestGetComprehensiveNews_LimitApplied(t *testing.T) {
	src := &fakeSource{name: "a"}
	for i := 0; i < 15; i++ {
		src.items = append(src.items, item(
			fmt.Sprintf("n%d", i),
			fmt.Sprintf("story number %d", i),
			float64(i),
		))
	}

	svc := New([]source.Source{src}, nil, nil, &metrics.Metrics{})
	got := svc.GetComprehensiveNews(context.Background(), nil, 10)

	if len(got) != 10 {
		t.Fatalf("expected 10 items, got %d", len(got))
	}
	if got[0].RelevanceScore != 14 {
		t.Errorf("expected highest score first, got %v", got[0].RelevanceScore)
	}
}

func TestGetComprehensiveNews_TwitterCappedAndIsolated(t *testing.T) {
	main := &fakeSource{name: "a", items: []news.Item{item("a1", "steady tape", 5)}}
	tw := &fakeSource{name: "twitter", err: errors.New("quota")}

	svc := New([]source.Source{main}, tw, nil, &metrics.Metrics{})
	got := svc.GetComprehensiveNews(context.Background(), []string{"AAPL", "NVDA", "PLTR", "IONQ"}, 10)

	if len(got) != 1 {
		t.Fatalf("twitter failure must not drop main results, got %d items", len(got))
	}
	if tw.calls != 1 {
		t.Fatalf("expected one twitter call, got %d", tw.calls)
	}
	if len(tw.symbols) != 3 {
		t.Errorf("expected twitter symbols capped at 3, got %v", tw.symbols)
	}
}

func TestGetComprehensiveNews_NoSymbolsSkipsTwitter(t *testing.T) {
	main := &fakeSource{name: "a", items: []news.Item{item("a1", "steady tape", 5)}}
	tw := &fakeSource{name: "twitter"}

	svc := New([]source.Source{main}, tw, nil, &metrics.Metrics{})
	svc.GetComprehensiveNews(context.Background(), nil, 10)

	if tw.calls != 0 {
		t.Errorf("twitter should not be called without symbols, got %d calls", tw.calls)
	}
}

func TestGetComprehensiveNews_LimiterSkipsExhaustedProvider(t *testing.T) {
	capped := &fakeSource{name: "alphavantage", items: []news.Item{item("a1", "capped story", 5)}}
	open := &fakeSource{name: "reddit", items: []news.Item{item("r1", "open story", 5)}}
	limiter := ratelimit.NewLimiter(map[string]int{"alphavantage": 0})

	svc := New([]source.Source{capped, open}, nil, limiter, &metrics.Metrics{})
	got := svc.GetComprehensiveNews(context.Background(), nil, 10)

	if capped.calls != 0 {
		t.Errorf("exhausted provider was still called %d times", capped.calls)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("expected only the unrestricted provider's item, got %+v", got)
	}
}

func TestGetComprehensiveNews_RecordsMetrics(t *testing.T) {
	m := &metrics.Metrics{}
	a := &fakeSource{name: "a", items: []news.Item{
		item("a1", "same story", 5),
		item("a2", "same story", 5),
	}}
	b := &fakeSource{name: "b", err: errors.New("down")}

	svc := New([]source.Source{a, b}, nil, nil, m)
	svc.GetComprehensiveNews(context.Background(), nil, 10)

	stats := m.GetStats()
	if stats["sources_queried"].(int64) != 2 {
		t.Errorf("sources_queried = %v, want 2", stats["sources_queried"])
	}
	if stats["source_failures"].(int64) != 1 {
		t.Errorf("source_failures = %v, want 1", stats["source_failures"])
	}
	if stats["duplicates_filtered"].(int64) != 1 {
		t.Errorf("duplicates_filtered = %v, want 1", stats["duplicates_filtered"])
	}
	if stats["is_healthy"].(bool) != true {
		t.Error("expected healthy after a successful run")
	}
}
