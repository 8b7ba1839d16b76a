// Package sink persists scored jobs. Two implementations: a local
// sqlite table and a Google Sheets worksheet.
package sink

import (
	"context"

	"jobscout-engine/internal/domain"
)

type Sink interface {
	// Add stores the job unless its url is already present. Returns the
	// stored row's identifier ("" when skipped as a duplicate).
	Add(ctx context.Context, job domain.ScoredJob) (string, error)

	// URLs returns every stored job url, used to rebuild the known set
	// at startup.
	URLs(ctx context.Context) ([]string, error)
}
