// Package preview fills in missing presentation fields on news items by
// fetching the linked page and reading its meta tags.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/AkhilBod/portfolioAdvisor/internal/news"
	"github.com/AkhilBod/portfolioAdvisor/internal/retry"
)

// maxEnrichments caps how many pages a single request may fetch, so a big
// feed never turns into a scraping run.
const maxEnrichments = 5

type Enricher struct {
	httpClient *http.Client
	userAgent  string
	retryCfg   retry.Config
}

func NewEnricher(userAgent string, timeout time.Duration) *Enricher {
	return &Enricher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		retryCfg: retry.Config{
			MaxAttempts: 2,
			Delay:       300 * time.Millisecond,
			Backoff:     true,
		},
	}
}

// Enrich fetches preview metadata for items that lack an image or a summary.
// It works on a copy; failures leave the item as it was.
func (e *Enricher) Enrich(ctx context.Context, items []news.Item) []news.Item {
	out := make([]news.Item, len(items))
	copy(out, items)

	fetched := 0
	for i := range out {
		if fetched >= maxEnrichments {
			break
		}
		if !needsEnrichment(out[i]) {
			continue
		}

		meta, err := e.fetchMeta(ctx, out[i].URL)
		if err != nil {
			slog.Debug("preview fetch failed", "url", out[i].URL, "error", err)
			continue
		}
		fetched++

		if out[i].ImageURL == "" {
			out[i].ImageURL = meta.image
		}
		if out[i].Summary == "" && meta.description != "" {
			out[i].Summary = news.Truncate(meta.description, news.SummaryLimit)
		}
	}
	return out
}

func needsEnrichment(item news.Item) bool {
	if !strings.HasPrefix(item.URL, "http") {
		return false
	}
	return item.ImageURL == "" || item.Summary == ""
}

type pageMeta struct {
	image       string
	description string
}

func (e *Enricher) fetchMeta(ctx context.Context, pageURL string) (pageMeta, error) {
	var meta pageMeta

	err := retry.WithRetry(ctx, e.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", e.userAgent)

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("preview status %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return err
		}

		meta = extractMeta(doc)
		return nil
	})
	return meta, err
}

func extractMeta(doc *goquery.Document) pageMeta {
	var meta pageMeta

	imageSelectors := []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	}
	for _, selector := range imageSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			meta.image = content
			break
		}
	}

	descSelectors := []string{
		`meta[property="og:description"]`,
		`meta[name="description"]`,
	}
	for _, selector := range descSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			meta.description = strings.TrimSpace(content)
			break
		}
	}

	return meta
}
