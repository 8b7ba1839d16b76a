package rank

import "jobscout-engine/internal/domain"

// Scorer computes an advisory 0-100 relevance score plus mismatch
// notes. Scores never gate persistence; only the filter engine
// excludes postings.
type Scorer interface {
	Score(p domain.Posting) (score int, notes []string)
}
