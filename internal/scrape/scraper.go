package scrape

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the result of fetching one posting URL. Empty Content with
// nil error means the fetch was transient-retryable; Blocked means the
// site detected automation and retrying will not change the outcome.
type Page struct {
	Content  string
	FinalURL string
	Blocked  bool
}

// Fetcher is the scrape collaborator contract. renderDelay escalates
// across pipeline attempts; implementations use it to give slow
// client-side pages more time before reading content.
type Fetcher interface {
	Fetch(ctx context.Context, url string, renderDelay time.Duration) (Page, error)
}

// Block-page tells. Matched against the <title> and the first chunk of
// body text, lowercased.
var blockedMarkers = []string{
	"403", "forbidden", "access denied", "blocked",
	"verify you are human", "just a moment", "cloudflare",
}

// PageScraper fetches job pages over plain HTTP and reduces them to
// visible text for the extractor. Transport-level failures get their
// own short exponential backoff here; the pipeline's linear
// render-delay escalation is a separate concern and stays upstream.
type PageScraper struct {
	hc      *http.Client
	limiter *HostLimiter
	retries int
}

func NewPageScraper(timeout time.Duration, limiter *HostLimiter) *PageScraper {
	return &PageScraper{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
		retries: 3,
	}
}

func (s *PageScraper) Fetch(ctx context.Context, rawURL string, renderDelay time.Duration) (Page, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, rawURL); err != nil {
			return Page{}, err
		}
	}

	// Give slow pages their settle time up front; over HTTP there is
	// no render to wait on, so the delay doubles as politeness.
	if renderDelay > 0 {
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-time.After(renderDelay):
		}
	}

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			// network-layer exponential backoff, distinct from the
			// pipeline's linear escalation
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return Page{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		page, retryable, err := s.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		log.Printf("[scrape] attempt %d/%d failed for %s: %v", attempt+1, s.retries, rawURL, err)
	}
	return Page{}, lastErr
}

func (s *PageScraper) fetchOnce(ctx context.Context, rawURL string) (page Page, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) JobScout/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := s.hc.Do(req)
	if err != nil {
		return Page{}, true, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer res.Body.Close()

	finalURL := rawURL
	if res.Request != nil && res.Request.URL != nil {
		finalURL = res.Request.URL.String()
	}

	if res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests {
		return Page{FinalURL: finalURL, Blocked: true}, false, nil
	}
	if res.StatusCode >= 500 {
		return Page{}, true, fmt.Errorf("fetch %s: status %d", rawURL, res.StatusCode)
	}
	if res.StatusCode >= 400 {
		// 404 and friends: nothing to extract, not worth retrying here
		return Page{FinalURL: finalURL}, false, nil
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return Page{}, true, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	if looksBlocked(doc) {
		return Page{FinalURL: finalURL, Blocked: true}, false, nil
	}

	return Page{Content: visibleText(doc), FinalURL: finalURL}, false, nil
}

func looksBlocked(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").First().Text())
	blob := title
	if body := doc.Find("body").Text(); len(body) < 2000 {
		// short pages are the usual shape of a block interstitial
		blob += " " + strings.ToLower(body)
	}
	for _, m := range blockedMarkers {
		if strings.Contains(blob, m) {
			return true
		}
	}
	return false
}

// visibleText flattens the document to the text an extractor cares
// about, dropping script/style/nav noise.
func visibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, svg, nav, footer, header").Remove()

	var b strings.Builder
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return strings.TrimSpace(b.String())
	}
	text := body.Text()

	// collapse whitespace but keep line structure for the extractor
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	b.WriteString(strings.Join(lines, "\n"))
	return strings.TrimSpace(b.String())
}
