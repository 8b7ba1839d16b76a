package extract

import (
	"context"

	"jobscout-engine/internal/domain"
)

// Extractor turns scraped page text into structured postings. An empty
// slice with nil error means the page yielded nothing usable this
// attempt; the pipeline treats that as retryable.
type Extractor interface {
	Extract(ctx context.Context, content, sourceURL string) ([]domain.Posting, error)
}
