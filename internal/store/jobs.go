package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type Job struct {
	ID         int64    `json:"id"`
	Company    string   `json:"company"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Score      int      `json:"score"`
	Notes      []string `json:"notes"`
	JobType    string   `json:"jobType"`
	WorkModel  string   `json:"workModel"`
	Location   string   `json:"location"`
	SeasonYear string   `json:"seasonYear"`
	Salary     string   `json:"salary"`
	Deadline   string   `json:"deadline"`
	Source     string   `json:"source"`
	Date       string   `json:"date"`
}

type ListJobsOpts struct {
	Sort  string // score | date | company | title
	Limit int
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company TEXT NOT NULL,
  title TEXT NOT NULL,
  url TEXT NOT NULL,
  score INTEGER NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT '[]',
  job_type TEXT NOT NULL DEFAULT '',
  work_model TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  season_year TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT '',
  deadline TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  date TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// url is the canonical identity; the caller normalizes before insert
	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_url
ON jobs(url);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_date
ON jobs(date);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

type JobInsert struct {
	Company    string
	Title      string
	URL        string
	Score      int
	NotesJSON  string // "[]"
	JobType    string
	WorkModel  string
	Location   string
	SeasonYear string
	Salary     string
	Deadline   string
	Source     string
	Date       string
}

// InsertJobIfNew inserts unless the url already exists. Returns whether
// a row was actually added (via changes(), since rows-affected is not
// reliable with INSERT OR IGNORE across drivers).
func InsertJobIfNew(db *sql.DB, j JobInsert) (added bool, err error) {
	_, err = db.Exec(`
INSERT OR IGNORE INTO jobs (company, title, url, score, notes, job_type, work_model, location, season_year, salary, deadline, source, date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		j.Company, j.Title, j.URL, j.Score, j.NotesJSON, j.JobType, j.WorkModel, j.Location, j.SeasonYear, j.Salary, j.Deadline, j.Source, j.Date,
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}

	var changes int
	if e := db.QueryRow(`SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

func ListJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts) ([]Job, error) {
	sortCol, order := "score", "DESC"
	switch opts.Sort {
	case "date":
		sortCol = "date"
	case "company":
		sortCol, order = "company", "ASC"
	case "title":
		sortCol, order = "title", "ASC"
	}

	limit := ""
	if opts.Limit > 0 {
		limit = fmt.Sprintf("LIMIT %d", opts.Limit)
	}

	query := fmt.Sprintf(`
SELECT id, company, title, url, score, notes, job_type, work_model, location, season_year, salary, deadline, source, date
FROM jobs
ORDER BY %s %s, id DESC
%s;`, sortCol, order, limit)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		var notes string
		if err := rows.Scan(&j.ID, &j.Company, &j.Title, &j.URL, &j.Score, &notes,
			&j.JobType, &j.WorkModel, &j.Location, &j.SeasonYear, &j.Salary,
			&j.Deadline, &j.Source, &j.Date); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(notes), &j.Notes); err != nil {
			j.Notes = nil
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ListJobURLs returns every stored url, for rebuilding the known set.
func ListJobURLs(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT url FROM jobs;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// CleanupOldJobs deletes rows older than the given number of days.
func CleanupOldJobs(ctx context.Context, db *sql.DB, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	res, err := db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM jobs WHERE date < datetime('now','-%d days');`, days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
