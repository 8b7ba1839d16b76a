package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is everything the filter and scoring engines know about the
// user. Free-text fields (class standing, graduation date, work
// authorization) are interpreted by the same heuristics the filter
// applies to postings.
type Profile struct {
	Name           string   `yaml:"name"`
	ClassStanding  string   `yaml:"class_standing"` // empty = graduated
	GraduationDate string   `yaml:"graduation_date"`
	Majors         []string `yaml:"majors"`
	Minors         []string `yaml:"minors"`
	GPA            float64  `yaml:"gpa"`
	WorkAuth       string   `yaml:"work_authorization"`
	TargetJobType  string   `yaml:"target_job_type"` // Internship | Full-Time | Both
	TargetSeason   string   `yaml:"target_season_year"`
	Locations      []string `yaml:"preferred_locations"`
	WorkModel      string   `yaml:"work_model"` // Remote | Hybrid | On-site | Any
	MinHourly      float64  `yaml:"min_salary_hourly"`
	DreamCompanies []string `yaml:"target_companies"`
	Skills         []string `yaml:"skills"`
	JobCategories  []string `yaml:"job_categories"`
}

type GitHubRepo struct {
	OwnerRepo string `yaml:"owner_repo"` // "owner/name"
	Branch    string `yaml:"branch"`
	Path      string `yaml:"path"` // defaults to README.md
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	User Profile `yaml:"user"`

	Sources struct {
		GitHub struct {
			Enabled bool         `yaml:"enabled"`
			Repos   []GitHubRepo `yaml:"repos"`
		} `yaml:"github"`
		Email struct {
			Enabled        bool     `yaml:"enabled"`
			IMAPHost       string   `yaml:"imap_host"`
			IMAPPort       int      `yaml:"imap_port"`
			Username       string   `yaml:"username"`
			Mailbox        string   `yaml:"mailbox"`
			AppPassword    string   `yaml:"app_password"`
			SubjectAny     []string `yaml:"search_subject_any"`
			LookbackDays   int      `yaml:"lookback_days"`
			MaxEmails      int      `yaml:"max_emails"`
			LinksPerEmail  int      `yaml:"links_per_email"`
			KeyringAccount string   `yaml:"keyring_account"`
		} `yaml:"email"`
	} `yaml:"sources"`

	AI struct {
		BaseURL        string `yaml:"base_url"` // OpenAI-compatible endpoint
		Model          string `yaml:"model"`
		APIKey         string `yaml:"api_key"` // prefer keyring_account
		KeyringAccount string `yaml:"keyring_account"`
		MaxTokens      int    `yaml:"max_tokens"`
	} `yaml:"ai"`

	Scrape struct {
		MaxAttempts        int     `yaml:"max_attempts"`
		RenderDelaySeconds float64 `yaml:"render_delay_seconds"`
		PageTimeoutSeconds int     `yaml:"page_timeout_seconds"`
		ListingDelayMillis int     `yaml:"listing_delay_ms"`
		JobAgeLimitDays    int     `yaml:"job_age_limit_days"`
		HostReqPerSec      float64 `yaml:"host_req_per_sec"`
		HostBurst          int     `yaml:"host_burst"`
	} `yaml:"scrape"`

	Dedup struct {
		SeenSourcesTTLDays int `yaml:"seen_sources_ttl_days"`
	} `yaml:"dedup"`

	Sink struct {
		Kind            string `yaml:"kind"` // sqlite | sheets
		SheetID         string `yaml:"sheet_id"`
		SheetRange      string `yaml:"sheet_range"`
		CredentialsPath string `yaml:"credentials_path"`
		RetentionDays   int    `yaml:"retention_days"` // 0 = keep forever, sqlite only
	} `yaml:"sink"`

	Polling struct {
		ScrapeMinutes int `yaml:"scrape_minutes"`
	} `yaml:"polling"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) RenderDelay() time.Duration {
	return time.Duration(c.Scrape.RenderDelaySeconds * float64(time.Second))
}

func (c Config) ListingDelay() time.Duration {
	return time.Duration(c.Scrape.ListingDelayMillis) * time.Millisecond
}

func (c Config) SeenSourcesTTL() time.Duration {
	return time.Duration(c.Dedup.SeenSourcesTTLDays) * 24 * time.Hour
}
