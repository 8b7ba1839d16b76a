package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
)

const extractionPrompt = `You are a job posting parser. Given the text of a job posting page, return a JSON array of job objects. A page may contain one job, several jobs, or none.

Each job object has these fields (omit or null when not stated, never guess):
company, title, job_type (Internship|Full-Time|Part-Time|Contract), work_model (Remote|Hybrid|On-site), is_remote (bool), locations (array), salary_min (number), salary_max (number), salary_period (hourly|monthly|yearly), currency, class_standing_requirement, graduation_timeline, season_year, work_authorization, sponsorship_available (bool), gpa_requirement (number), job_category (Software Engineering|Product Management|Data Science/AI/ML|Quantitative Finance|Hardware Engineering), apply_url, posted_date, deadline, required_skills (array), preferred_skills (array), required_majors (array), description_summary.

Return ONLY the JSON array, no prose. Return [] if the page has no job posting.`

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int

	hc *http.Client
}

func NewClient(baseURL, model, apiKey string, maxTokens int) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Model:     model,
		APIKey:    apiKey,
		MaxTokens: maxTokens,
		hc:        &http.Client{Timeout: 90 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// postingJSON mirrors the provider's output contract.
type postingJSON struct {
	Company              string   `json:"company"`
	Title                string   `json:"title"`
	JobType              string   `json:"job_type"`
	WorkModel            string   `json:"work_model"`
	IsRemote             *bool    `json:"is_remote"`
	Locations            []string `json:"locations"`
	SalaryMin            *float64 `json:"salary_min"`
	SalaryMax            *float64 `json:"salary_max"`
	SalaryPeriod         string   `json:"salary_period"`
	Currency             string   `json:"currency"`
	ClassStanding        string   `json:"class_standing_requirement"`
	GraduationTimeline   string   `json:"graduation_timeline"`
	SeasonYear           string   `json:"season_year"`
	WorkAuthorization    string   `json:"work_authorization"`
	SponsorshipAvailable *bool    `json:"sponsorship_available"`
	GPARequirement       *float64 `json:"gpa_requirement"`
	JobCategory          string   `json:"job_category"`
	ApplyURL             string   `json:"apply_url"`
	PostedDate           string   `json:"posted_date"`
	Deadline             string   `json:"deadline"`
	RequiredSkills       []string `json:"required_skills"`
	PreferredSkills      []string `json:"preferred_skills"`
	RequiredMajors       []string `json:"required_majors"`
	Summary              string   `json:"description_summary"`
}

func (c *Client) Extract(ctx context.Context, content, sourceURL string) ([]domain.Posting, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	// Truncate huge pages; the relevant text is near the top.
	if len(content) > 60000 {
		content = content[:60000]
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionPrompt},
			{Role: "user", Content: content},
		},
		MaxTokens:   c.MaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction status %d: %s", res.StatusCode, truncate(string(raw), 200))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("extraction provider: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return nil, nil
	}

	return ParsePostings(cr.Choices[0].Message.Content, sourceURL)
}

// ParsePostings decodes the provider's reply. Accepts a bare array or
// a {"jobs": [...]} wrapper, with or without markdown fences.
func ParsePostings(reply, sourceURL string) ([]domain.Posting, error) {
	reply = stripFences(reply)
	if reply == "" {
		return nil, nil
	}

	var rows []postingJSON
	if err := json.Unmarshal([]byte(reply), &rows); err != nil {
		var wrapper struct {
			Jobs []postingJSON `json:"jobs"`
		}
		if err2 := json.Unmarshal([]byte(reply), &wrapper); err2 != nil {
			log.Printf("[extract] unparseable reply (%d bytes)", len(reply))
			return nil, nil
		}
		rows = wrapper.Jobs
	}

	var out []domain.Posting
	for _, r := range rows {
		if r.Company == "" && r.Title == "" {
			continue
		}
		out = append(out, domain.Posting{
			Company:              r.Company,
			Title:                r.Title,
			JobType:              r.JobType,
			WorkModel:            r.WorkModel,
			Remote:               r.IsRemote,
			Locations:            r.Locations,
			SalaryMin:            r.SalaryMin,
			SalaryMax:            r.SalaryMax,
			SalaryPeriod:         r.SalaryPeriod,
			Currency:             r.Currency,
			ClassStanding:        r.ClassStanding,
			GraduationTimeline:   r.GraduationTimeline,
			SeasonYear:           r.SeasonYear,
			WorkAuthorization:    r.WorkAuthorization,
			SponsorshipAvailable: r.SponsorshipAvailable,
			GPARequirement:       r.GPARequirement,
			Category:             r.JobCategory,
			ApplyURL:             r.ApplyURL,
			PostedDate:           r.PostedDate,
			Deadline:             r.Deadline,
			RequiredSkills:       r.RequiredSkills,
			PreferredSkills:      r.PreferredSkills,
			RequiredMajors:       r.RequiredMajors,
			Summary:              r.Summary,
			SourceURL:            sourceURL,
		})
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
