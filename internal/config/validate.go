package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus anything worth
// flagging. Defaults are filled here so the rest of the engine never
// has to guard against zero values.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.User.Majors = trimList(out.User.Majors)
	out.User.Minors = trimList(out.User.Minors)
	out.User.Locations = trimList(out.User.Locations)
	out.User.DreamCompanies = trimList(out.User.DreamCompanies)
	out.User.Skills = trimList(out.User.Skills)
	out.User.JobCategories = trimList(out.User.JobCategories)
	out.Sources.Email.SubjectAny = trimList(out.Sources.Email.SubjectAny)

	// ---- Defaults ----

	if out.Scrape.MaxAttempts <= 0 {
		out.Scrape.MaxAttempts = 3
	}
	if out.Scrape.RenderDelaySeconds <= 0 {
		out.Scrape.RenderDelaySeconds = 2
	}
	if out.Scrape.PageTimeoutSeconds <= 0 {
		out.Scrape.PageTimeoutSeconds = 30
	}
	if out.Scrape.ListingDelayMillis <= 0 {
		out.Scrape.ListingDelayMillis = 1000
	}
	if out.Scrape.HostReqPerSec <= 0 {
		out.Scrape.HostReqPerSec = 1.0
	}
	if out.Scrape.HostBurst <= 0 {
		out.Scrape.HostBurst = 2
	}
	if out.Dedup.SeenSourcesTTLDays <= 0 {
		out.Dedup.SeenSourcesTTLDays = 30
	}
	if out.Sink.Kind == "" {
		out.Sink.Kind = "sqlite"
	}
	if out.Sink.SheetRange == "" {
		out.Sink.SheetRange = "Jobs!A:M"
	}
	if out.AI.BaseURL == "" {
		out.AI.BaseURL = "https://api.openai.com/v1"
	}
	if out.AI.Model == "" {
		out.AI.Model = "gpt-4o-mini"
	}
	if out.User.TargetJobType == "" {
		out.User.TargetJobType = "Both"
	}
	if out.User.WorkModel == "" {
		out.User.WorkModel = "Any"
	}
	if out.Polling.ScrapeMinutes <= 0 {
		out.Polling.ScrapeMinutes = 60
	}

	// ---- Validation rules ----

	if out.App.Port < 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 0..65535")
	}
	if !out.Sources.GitHub.Enabled && !out.Sources.Email.Enabled {
		res.addWarn("no listing sources enabled; runs will process nothing")
	}
	for i, r := range out.Sources.GitHub.Repos {
		if strings.Count(strings.TrimSpace(r.OwnerRepo), "/") != 1 {
			res.addErr("sources.github.repos[%d].owner_repo must be \"owner/name\"", i)
		}
	}
	if out.Sources.Email.Enabled {
		if strings.TrimSpace(out.Sources.Email.IMAPHost) == "" {
			res.addErr("sources.email.imap_host is required when email is enabled")
		}
		if strings.TrimSpace(out.Sources.Email.Username) == "" {
			res.addErr("sources.email.username is required when email is enabled")
		}
	}
	switch out.Sink.Kind {
	case "sqlite":
	case "sheets":
		if strings.TrimSpace(out.Sink.SheetID) == "" {
			res.addErr("sink.sheet_id is required when sink.kind=sheets")
		}
		if strings.TrimSpace(out.Sink.CredentialsPath) == "" {
			res.addErr("sink.credentials_path is required when sink.kind=sheets")
		}
	default:
		res.addErr("sink.kind must be sqlite or sheets, got %q", out.Sink.Kind)
	}
	switch strings.ToLower(out.User.TargetJobType) {
	case "internship", "full-time", "both":
	default:
		res.addWarn("user.target_job_type %q is unusual; expected Internship, Full-Time, or Both", out.User.TargetJobType)
	}
	if out.User.GPA < 0 || out.User.GPA > 4.0 {
		res.addWarn("user.gpa %.2f looks out of range", out.User.GPA)
	}
	if out.Scrape.JobAgeLimitDays < 0 {
		res.addErr("scrape.job_age_limit_days must be >= 0")
	}
	if out.Sink.RetentionDays < 0 {
		res.addErr("sink.retention_days must be >= 0")
	}

	return out, res
}
