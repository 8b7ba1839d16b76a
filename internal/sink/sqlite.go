package sink

import (
	"context"
	"encoding/json"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/store"
)

// SQLite writes scored jobs into the local jobs table.
type SQLite struct {
	DB *store.DB
}

func NewSQLite(db *store.DB) *SQLite {
	return &SQLite{DB: db}
}

func (s *SQLite) Add(ctx context.Context, job domain.ScoredJob) (string, error) {
	notes, _ := json.Marshal(job.Notes)
	if job.Notes == nil {
		notes = []byte("[]")
	}

	date := job.PostedDate
	if date == "" {
		date = time.Now().UTC().Format(time.RFC3339)
	}

	added, err := store.InsertJobIfNew(s.DB.Pool, store.JobInsert{
		Company:    job.Company,
		Title:      job.Title,
		URL:        job.URL,
		Score:      job.Score,
		NotesJSON:  string(notes),
		JobType:    job.JobType,
		WorkModel:  job.WorkModel,
		Location:   job.Location,
		SeasonYear: job.SeasonYear,
		Salary:     job.Salary,
		Deadline:   job.Deadline,
		Source:     job.Source,
		Date:       date,
	})
	if err != nil {
		return "", err
	}
	if !added {
		return "", nil
	}
	return job.URL, nil
}

func (s *SQLite) URLs(ctx context.Context) ([]string, error) {
	return store.ListJobURLs(ctx, s.DB.Pool)
}

// Cleanup removes rows older than the retention window.
func (s *SQLite) Cleanup(ctx context.Context, days int) (int64, error) {
	return store.CleanupOldJobs(ctx, s.DB.Pool, days)
}
