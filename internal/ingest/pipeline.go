// Package ingest runs the per-listing scrape/extract/filter/score
// unit of work and the retry policy around it.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/dedup"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/extract"
	"jobscout-engine/internal/filter"
	"jobscout-engine/internal/rank"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/sink"
)

type Stats struct {
	ListingsFound      int
	DuplicatesSkipped  int
	ScrapeBlocked      int
	ExtractionFailures int
	FilteredOut        int
	JobsAdded          int
}

func (s Stats) String() string {
	return fmt.Sprintf("found=%d skipped=%d blocked=%d extract_failed=%d filtered=%d added=%d",
		s.ListingsFound, s.DuplicatesSkipped, s.ScrapeBlocked,
		s.ExtractionFailures, s.FilteredOut, s.JobsAdded)
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeBlocked
	outcomeExtractFailed
	outcomeProcessed
)

// Orchestrator wires the collaborators together. Listings are handled
// strictly one at a time; the known set is the only state shared
// across them within a run. Runs themselves are serialized: in
// scheduled mode the ticker and the local API can both trigger one,
// and the dedup store is not safe for concurrent use.
type Orchestrator struct {
	mu sync.Mutex

	Cfg       config.Config
	Dedup     *dedup.Store
	Fetcher   scrape.Fetcher
	Extractor extract.Extractor
	Filter    filter.Engine
	Scorer    rank.Scorer
	Sink      sink.Sink
	Hub       *events.Hub // optional
}

// Reconfigure swaps the run-scoped collaborators. It blocks while a
// run is in flight so a reload never mutates a running pipeline.
func (o *Orchestrator) Reconfigure(cfg config.Config, f filter.Engine, s rank.Scorer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Cfg = cfg
	o.Filter = f
	o.Scorer = s
}

// Run processes listings sequentially. limit caps the number of
// listings that actually get scraped; skips are free and do not count.
// A second caller blocks until the current run finishes.
func (o *Orchestrator) Run(ctx context.Context, listings []domain.Listing, limit int) (Stats, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	stats := Stats{ListingsFound: len(listings)}

	if err := o.refreshKnown(ctx); err != nil {
		log.Printf("[ingest] refresh known set: %v (continuing with empty set)", err)
	}

	processed := 0
	for i, l := range listings {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if limit > 0 && processed >= limit {
			log.Printf("[ingest] run cap reached (%d), stopping", limit)
			break
		}

		ageLimit := o.Cfg.Scrape.JobAgeLimitDays
		if ageLimit > 0 && l.AgeDays > ageLimit {
			stats.DuplicatesSkipped++
			continue
		}

		res := o.processListing(ctx, l, &stats)
		if res == outcomeSkipped {
			continue
		}
		processed++

		// politeness pause between real listings
		if i < len(listings)-1 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(o.Cfg.ListingDelay()):
			}
		}
	}

	log.Printf("[ingest] run done: %s", stats.String())
	if o.Hub != nil {
		o.Hub.Publish(events.MakeEvent("", "run_done", 1, stats))
	}
	return stats, nil
}

func (o *Orchestrator) refreshKnown(ctx context.Context) error {
	urls, err := o.Sink.URLs(ctx)
	if err != nil {
		return err
	}
	o.Dedup.RefreshKnown(urls)
	log.Printf("[ingest] known set: %d urls", len(urls))
	return nil
}

// processListing is the unit of work for one listing. It never lets a
// panic from a collaborator kill the run; the listing is marked seen
// and the run moves on.
func (o *Orchestrator) processListing(ctx context.Context, l domain.Listing, stats *Stats) (res outcome) {
	sourceURL := dedup.NormalizeURL(l.URL)
	if sourceURL == "" {
		stats.DuplicatesSkipped++
		return outcomeSkipped
	}

	if o.Dedup.IsSeenSource(sourceURL) {
		stats.DuplicatesSkipped++
		return outcomeSkipped
	}
	if o.Dedup.IsKnown(sourceURL) || o.Dedup.IsFiltered(sourceURL) {
		stats.DuplicatesSkipped++
		return outcomeSkipped
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ingest] panic processing %s: %v", sourceURL, r)
			o.Dedup.MarkSeenSource(sourceURL)
			stats.ExtractionFailures++
			res = outcomeExtractFailed
		}
	}()

	maxAttempts := o.Cfg.Scrape.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := o.Cfg.RenderDelay()

	var (
		postings []domain.Posting
		finalURL string
	)

attempts:
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// linear escalation: the dominant transient failure is a page
		// that has not finished rendering, so each attempt waits longer
		renderDelay := time.Duration(attempt) * baseDelay

		page, err := o.Fetcher.Fetch(ctx, l.URL, renderDelay)
		if err != nil {
			log.Printf("[ingest] fetch %s (attempt %d/%d): %v", sourceURL, attempt, maxAttempts, err)
			continue
		}
		if page.Blocked {
			log.Printf("[ingest] blocked: %s", sourceURL)
			o.Dedup.MarkSeenSource(sourceURL)
			stats.ScrapeBlocked++
			return outcomeBlocked
		}
		if page.Content == "" {
			continue
		}

		finalURL = dedup.NormalizeURL(page.FinalURL)
		if finalURL == "" {
			finalURL = sourceURL
		}
		// redirect target is only learnable after a successful fetch
		if o.Dedup.IsKnown(finalURL) || o.Dedup.IsFiltered(finalURL) {
			o.Dedup.MarkSeenSource(sourceURL)
			stats.DuplicatesSkipped++
			return outcomeSkipped
		}

		extracted, err := o.Extractor.Extract(ctx, page.Content, finalURL)
		if err != nil {
			log.Printf("[ingest] extract %s (attempt %d/%d): %v", sourceURL, attempt, maxAttempts, err)
			continue
		}
		if len(extracted) > 0 {
			postings = extracted
			break attempts
		}
	}

	if len(postings) == 0 {
		o.Dedup.MarkSeenSource(sourceURL)
		stats.ExtractionFailures++
		return outcomeExtractFailed
	}

	for _, p := range postings {
		if pass, reason := o.Filter.Evaluate(p); !pass {
			log.Printf("[ingest] filtered %s / %s: %s", p.Company, p.Title, reason)
			o.Dedup.MarkFiltered(finalURL)
			stats.FilteredOut++
			continue
		}

		score, notes := o.Scorer.Score(p)
		job := buildScoredJob(l, p, finalURL, score, notes)

		if _, err := o.Sink.Add(ctx, job); err != nil {
			log.Printf("[ingest] sink add %s: %v", finalURL, err)
			continue
		}
		o.Dedup.AddKnown(finalURL)
		stats.JobsAdded++
		log.Printf("[ingest] added %s / %s (score %d)", job.Company, job.Title, score)
		if o.Hub != nil {
			o.Hub.Publish(events.MakeEvent("", "job_added", 1, map[string]any{
				"company": job.Company, "title": job.Title, "score": job.Score,
			}))
		}
	}

	o.Dedup.MarkSeenSource(sourceURL)
	return outcomeProcessed
}

func buildScoredJob(l domain.Listing, p domain.Posting, finalURL string, score int, notes []string) domain.ScoredJob {
	company := p.Company
	if company == "" {
		company = l.Company
	}
	title := p.Title
	if title == "" {
		title = l.Title
	}

	return domain.ScoredJob{
		Company:    company,
		Title:      title,
		URL:        finalURL,
		Score:      score,
		Notes:      notes,
		JobType:    p.JobType,
		WorkModel:  p.WorkModel,
		Location:   strings.Join(p.Locations, "; "),
		SeasonYear: p.SeasonYear,
		Salary:     formatSalary(p),
		Deadline:   p.Deadline,
		Source:     l.Source,
		PostedDate: p.PostedDate,
	}
}

func formatSalary(p domain.Posting) string {
	if p.SalaryMin == nil && p.SalaryMax == nil {
		return ""
	}
	currency := p.Currency
	if currency == "" {
		currency = "$"
	}
	period := p.SalaryPeriod
	if period != "" {
		period = "/" + period
	}
	switch {
	case p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin != *p.SalaryMax:
		return fmt.Sprintf("%s%.0f-%.0f%s", currency, *p.SalaryMin, *p.SalaryMax, period)
	case p.SalaryMin != nil:
		return fmt.Sprintf("%s%.0f%s", currency, *p.SalaryMin, period)
	default:
		return fmt.Sprintf("%s%.0f%s", currency, *p.SalaryMax, period)
	}
}
