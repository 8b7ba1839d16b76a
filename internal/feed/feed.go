// Package feed produces job listings from external sources: curated
// GitHub listing repos and job-alert email.
package feed

import (
	"context"

	"jobscout-engine/internal/domain"
)

type Source interface {
	Name() string
	Listings(ctx context.Context) ([]domain.Listing, error)
}
