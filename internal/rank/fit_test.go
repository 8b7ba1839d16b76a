package rank

import (
	"testing"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }

func fullProfile() config.Profile {
	return config.Profile{
		Majors:         []string{"Computer Science"},
		Minors:         []string{"Mathematics"},
		GPA:            3.5,
		Locations:      []string{"NYC", "Boston"},
		WorkModel:      "Hybrid",
		MinHourly:      25,
		DreamCompanies: []string{"Stripe"},
		Skills:         []string{"Go", "Python", "SQL"},
		JobCategories:  []string{"Software Engineering"},
	}
}

func TestScoreBounds(t *testing.T) {
	postings := []domain.Posting{
		{}, // empty posting
		{
			Company:         "Stripe",
			Category:        "Software Engineering",
			RequiredMajors:  []string{"Computer Science"},
			RequiredSkills:  []string{"Go", "SQL"},
			PreferredSkills: []string{"Python"},
			Locations:       []string{"New York, NY"},
			SalaryMin:       f64(50), SalaryMax: f64(60), SalaryPeriod: "hourly",
			GPARequirement: f64(3.0),
		},
		{
			Company:        "NoMatch Corp",
			Category:       "Sales",
			RequiredMajors: []string{"Dentistry"},
			RequiredSkills: []string{"Cold calling"},
			Locations:      []string{"Nowhere, AK"},
			SalaryMin:      f64(5), SalaryPeriod: "hourly",
			GPARequirement: f64(4.0),
		},
	}

	s := FitScorer{User: fullProfile()}
	for _, p := range postings {
		score, _ := s.Score(p)
		if score < 0 || score > 100 {
			t.Errorf("score %d out of [0,100] for %q", score, p.Company)
		}
	}
}

func TestPerfectMatchScoresFull(t *testing.T) {
	s := FitScorer{User: fullProfile()}
	score, notes := s.Score(domain.Posting{
		Company:         "Stripe",
		Category:        "Software Engineering",
		RequiredMajors:  []string{"Computer Science"},
		RequiredSkills:  []string{"Go", "SQL"},
		PreferredSkills: []string{"Python"},
		Locations:       []string{"New York City"},
		SalaryMin:       f64(50), SalaryPeriod: "hourly",
		GPARequirement: f64(3.0),
	})
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if len(notes) != 0 {
		t.Errorf("unexpected mismatch notes: %v", notes)
	}
}

func TestCompanyScore(t *testing.T) {
	tests := []struct {
		name      string
		dream     []string
		cats      []string
		company   string
		category  string
		want      int
	}{
		{"dream and category", []string{"Stripe"}, []string{"Software Engineering"}, "Stripe", "Software Engineering", 30},
		{"category only", []string{"Stripe"}, []string{"Software Engineering"}, "Acme", "Software Engineering", 20},
		{"dream only", []string{"Stripe"}, []string{"Software Engineering"}, "Stripe", "Sales", 20},
		{"neither", []string{"Stripe"}, []string{"Software Engineering"}, "Acme", "Sales", 0},
		{"no category preference matches any", nil, nil, "Acme", "Sales", 20},
		{"no category at all", nil, nil, "Acme", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompanyScore(tt.dream, tt.cats, tt.company, tt.category)
			if got != tt.want {
				t.Errorf("CompanyScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMajorScore(t *testing.T) {
	tests := []struct {
		name     string
		majors   []string
		minors   []string
		required []string
		category string
		want     int
	}{
		{"no requirement", []string{"CS"}, nil, nil, "", 20},
		{"direct match", []string{"Computer Science"}, nil, []string{"Computer Science or related"}, "", 20},
		{"minor match", []string{"History"}, []string{"Statistics"}, []string{"Statistics"}, "", 10},
		{"category inferred", []string{"Computer Science"}, nil, nil, "Data Science/AI/ML", 15},
		{"or related leniency", []string{"History"}, nil, []string{"Engineering or related field"}, "", 10},
		{"base credit", []string{"History"}, nil, []string{"Dentistry"}, "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MajorScore(tt.majors, tt.minors, tt.required, tt.category)
			if got != tt.want {
				t.Errorf("MajorScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSkillsScoreCaps(t *testing.T) {
	got := SkillsScore([]string{"Go"}, []string{"Go"}, []string{"Go"})
	if got != 20 {
		t.Errorf("full overlap = %d, want 20", got)
	}
	got = SkillsScore(nil, []string{"Go"}, nil)
	if got != 10 {
		t.Errorf("no user skills = %d, want partial credit 10", got)
	}
	got = SkillsScore([]string{"Go"}, nil, nil)
	if got != 20 {
		t.Errorf("no requirements = %d, want 20", got)
	}
	// half the required skills -> 7 of 15, plus free 5 preferred
	got = SkillsScore([]string{"Go"}, []string{"Go", "Rust"}, nil)
	if got != 12 {
		t.Errorf("half required = %d, want 12", got)
	}
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		name      string
		userLocs  []string
		model     string
		jobLocs   []string
		remote    *bool
		jobModel  string
		want      int
	}{
		{"any model", nil, "Any", []string{"Mars"}, nil, "", 10},
		{"remote job, remote user", []string{"NYC"}, "Remote", nil, b(true), "", 10},
		{"remote job, onsite user", []string{"NYC"}, "On-site", nil, b(true), "", 5},
		{"alias match nyc", []string{"NYC"}, "Hybrid", []string{"New York, NY"}, nil, "", 10},
		{"direct substring", []string{"Boston"}, "Hybrid", []string{"Boston, MA"}, nil, "", 10},
		{"state token overlap", []string{"Austin, TX"}, "Hybrid", []string{"Dallas, TX"}, nil, "", 7},
		{"no match", []string{"Boston"}, "Hybrid", []string{"Tulsa, OK"}, nil, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocationScore(tt.userLocs, tt.model, tt.jobLocs, tt.remote, tt.jobModel)
			if got != tt.want {
				t.Errorf("LocationScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSalaryScore(t *testing.T) {
	tests := []struct {
		name   string
		min    float64
		sMin   *float64
		sMax   *float64
		period string
		want   int
	}{
		{"no user minimum", 0, f64(1), nil, "hourly", 10},
		{"no salary info", 25, nil, nil, "", 5},
		{"yearly above minimum", 25, nil, f64(60000), "yearly", 10}, // 60000/2080 ≈ 28.85
		{"yearly below 80%", 25, nil, f64(30000), "yearly", 0},
		{"monthly near miss", 25, nil, f64(3600), "monthly", 5}, // 3600/173 ≈ 20.8
		{"hourly exact", 25, f64(25), nil, "hourly", 10},
		{"unknown period", 25, f64(100), nil, "weekly", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SalaryScore(tt.min, tt.sMin, tt.sMax, tt.period)
			if got != tt.want {
				t.Errorf("SalaryScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGPAScore(t *testing.T) {
	tests := []struct {
		name string
		gpa  float64
		req  *float64
		want int
	}{
		{"no requirement", 3.0, nil, 10},
		{"zero requirement", 3.0, f64(0), 10},
		{"meets", 3.5, f64(3.0), 10},
		{"within 0.3", 2.8, f64(3.0), 5},
		{"too far below", 2.5, f64(3.0), 0},
		{"no user gpa", 0, f64(3.0), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GPAScore(tt.gpa, tt.req)
			if got != tt.want {
				t.Errorf("GPAScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreNotesOnMismatch(t *testing.T) {
	s := FitScorer{User: fullProfile()}
	_, notes := s.Score(domain.Posting{
		Company:        "Acme",
		RequiredMajors: []string{"Dentistry"},
		Locations:      []string{"Tulsa, OK"},
		SalaryMax:      f64(20000), SalaryPeriod: "yearly",
	})
	if len(notes) != 3 {
		t.Fatalf("notes = %v, want major+location+salary", notes)
	}
}
