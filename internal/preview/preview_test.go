package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
)

const page = `<html><head>
<meta property="og:image" content="https://example.com/og.jpg">
<meta property="og:description" content="A short preview of the article.">
</head><body><p>body</p></body></html>`

func TestEnrich_FillsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	e := NewEnricher("test-agent", 5*time.Second)
	items := e.Enrich(context.Background(), []news.Item{
		{ID: "n1", Title: "story", URL: srv.URL},
	})

	assert.Equal(t, "https://example.com/og.jpg", items[0].ImageURL)
	assert.Equal(t, "A short preview of the article.", items[0].Summary)
}

func TestEnrich_SkipsCompleteAndNonHTTPItems(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	e := NewEnricher("test-agent", time.Second)
	items := e.Enrich(context.Background(), []news.Item{
		{ID: "n1", URL: srv.URL, ImageURL: "https://cdn/img.jpg", Summary: "done"},
		{ID: "n2", URL: "#"},
	})

	assert.Equal(t, false, called)
	assert.Equal(t, "https://cdn/img.jpg", items[0].ImageURL)
}

func TestEnrich_FailureLeavesItemUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewEnricher("test-agent", time.Second)
	items := e.Enrich(context.Background(), []news.Item{
		{ID: "n1", Title: "story", URL: srv.URL, Summary: "kept"},
	})

	assert.Equal(t, "", items[0].ImageURL)
	assert.Equal(t, "kept", items[0].Summary)
}
