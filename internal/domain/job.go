package domain

// Listing is one row from a listing feed (GitHub table, email alert).
// The pipeline only needs the URL; everything else rides along for
// display and as a fallback when extraction comes back thin.
type Listing struct {
	Company string
	Title   string
	URL     string
	Source  string // repo slug, "email", etc.
	AgeDays int
}

// Posting is the structured output of the extraction step. One scraped
// page can yield several of these (multi-position postings).
type Posting struct {
	Company string
	Title   string

	JobType   string // Internship | Full-Time | Part-Time | Contract
	WorkModel string // Remote | Hybrid | On-site
	Remote    *bool
	Locations []string

	SalaryMin    *float64
	SalaryMax    *float64
	SalaryPeriod string // hourly | monthly | yearly
	Currency     string

	// Eligibility fields, free text as extracted. Consumed once by the
	// filter engine, never mutated.
	ClassStanding        string
	GraduationTimeline   string
	SeasonYear           string
	WorkAuthorization    string
	SponsorshipAvailable *bool
	GPARequirement       *float64

	Category   string // Software Engineering | Product Management | ...
	ApplyURL   string
	PostedDate string
	Deadline   string

	RequiredSkills  []string
	PreferredSkills []string
	RequiredMajors  []string

	Summary   string
	SourceURL string
}

// ScoredJob is a filter-passed, scored posting ready for the sink.
type ScoredJob struct {
	Company    string
	Title      string
	URL        string
	Score      int
	Notes      []string
	JobType    string
	WorkModel  string
	Location   string
	SeasonYear string
	Salary     string
	Deadline   string
	Source     string
	PostedDate string
}
