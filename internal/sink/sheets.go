package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"jobscout-engine/internal/domain"
)

// Sheets appends scored jobs as rows to a Google Sheets worksheet.
// Column order: Date, Company, Title, URL, Score, Type, Work Model,
// Location, Season, Salary, Deadline, Source, Notes.
type Sheets struct {
	service   *sheets.Service
	sheetID   string
	readRange string
}

func NewSheets(ctx context.Context, credentialsPath, sheetID, readRange string) (*Sheets, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("sheets: credentials path is required")
	}
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	if readRange == "" {
		readRange = "Sheet1!A:M"
	}
	return &Sheets{service: service, sheetID: sheetID, readRange: readRange}, nil
}

func (s *Sheets) Add(ctx context.Context, job domain.ScoredJob) (string, error) {
	date := job.PostedDate
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	row := []interface{}{
		date,
		job.Company,
		job.Title,
		job.URL,
		job.Score,
		job.JobType,
		job.WorkModel,
		job.Location,
		job.SeasonYear,
		job.Salary,
		job.Deadline,
		job.Source,
		strings.Join(job.Notes, "; "),
	}

	res, err := s.service.Spreadsheets.Values.Append(s.sheetID, s.readRange, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("sheets: append row: %w", err)
	}
	if res.Updates != nil {
		return res.Updates.UpdatedRange, nil
	}
	return job.URL, nil
}

// URLs reads the url column from every row, skipping the header.
func (s *Sheets) URLs(ctx context.Context) ([]string, error) {
	res, err := s.service.Spreadsheets.Values.Get(s.sheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read rows: %w", err)
	}

	var urls []string
	for i, row := range res.Values {
		if i == 0 || len(row) < 4 {
			continue
		}
		u, ok := row[3].(string)
		if !ok || !strings.HasPrefix(u, "http") {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}
