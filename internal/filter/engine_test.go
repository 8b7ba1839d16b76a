package filter

import (
	"testing"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

func testProfile() config.Profile {
	return config.Profile{
		ClassStanding:  "Junior",
		GraduationDate: "May 2026",
		WorkAuth:       "US Citizen",
		TargetJobType:  "Internship",
		TargetSeason:   "Summer 2025",
	}
}

func TestEvaluateEmptyRequirementsAlwaysPass(t *testing.T) {
	profiles := []config.Profile{
		testProfile(),
		{TargetJobType: "Full-Time", WorkAuth: "Need Sponsorship"},
		{TargetJobType: "Both"},
	}
	for _, p := range profiles {
		pass, reason := Engine{User: p}.Evaluate(domain.Posting{Company: "Acme", Title: "SWE Intern"})
		if !pass {
			t.Errorf("posting with no eligibility fields must pass, got fail: %s", reason)
		}
	}
}

func TestEvaluateClassStandingBoundary(t *testing.T) {
	posting := domain.Posting{ClassStanding: "Rising Senior"} // resolves to Junior

	tests := []struct {
		user string
		pass bool
	}{
		{"Senior", true},
		{"Junior", true}, // exactly at the boundary
		{"Sophomore", false},
		{"Freshman", false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			u := testProfile()
			u.ClassStanding = tt.user
			pass, reason := Engine{User: u}.Evaluate(posting)
			if pass != tt.pass {
				t.Errorf("user %q vs %q: pass = %v (%s), want %v",
					tt.user, posting.ClassStanding, pass, reason, tt.pass)
			}
		})
	}
}

func TestEvaluateJobType(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		jobType string
		pass    bool
	}{
		{"both accepts anything", "Both", "Full-Time", true},
		{"absent type passes", "Internship", "", true},
		{"substring overlap", "Internship", "Summer Internship Program", true},
		{"mismatch fails", "Internship", "Full-Time", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := testProfile()
			u.TargetJobType = tt.target
			pass, _ := Engine{User: u}.Evaluate(domain.Posting{JobType: tt.jobType})
			if pass != tt.pass {
				t.Errorf("target %q vs job %q: pass = %v, want %v", tt.target, tt.jobType, pass, tt.pass)
			}
		})
	}
}

func TestEvaluateSeasonYear(t *testing.T) {
	tests := []struct {
		name   string
		target string
		season string
		pass   bool
	}{
		{"exact match", "Summer 2025", "Summer 2025", true},
		{"no preference", "", "Winter 2030", true},
		{"job omits season", "Summer 2025", "", true},
		{"job omits year", "Summer 2025", "Summer", true},
		{"same year different season", "Summer 2025", "Fall 2025", true},
		{"different year fails", "Summer 2025", "Summer 2026", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := testProfile()
			u.TargetSeason = tt.target
			pass, _ := Engine{User: u}.Evaluate(domain.Posting{SeasonYear: tt.season})
			if pass != tt.pass {
				t.Errorf("target %q vs job %q: pass = %v, want %v", tt.target, tt.season, pass, tt.pass)
			}
		})
	}
}

func TestEvaluateWorkAuth(t *testing.T) {
	no := false
	tests := []struct {
		name    string
		user    string
		req     string
		sponsor *bool
		pass    bool
	}{
		{"citizen passes explicit denial", "US Citizen", "no sponsorship available", nil, true},
		{"green card passes", "Green Card holder", "must be authorized, cannot sponsor", nil, true},
		{"needs sponsorship vs keyword denial", "Need Sponsorship", "we are unable to sponsor visas", nil, false},
		{"needs sponsorship vs flag denial", "Need Sponsorship", "", &no, false},
		{"needs sponsorship, silence passes", "Need Sponsorship", "must be authorized to work", nil, true},
		{"opt passes denial", "F-1 OPT", "no sponsorship", nil, true},
		{"cpt passes", "CPT eligible", "", &no, true},
		{"unknown auth is indeterminate, passes", "Work permit pending", "citizens only", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := testProfile()
			u.WorkAuth = tt.user
			pass, reason := Engine{User: u}.Evaluate(domain.Posting{
				WorkAuthorization:    tt.req,
				SponsorshipAvailable: tt.sponsor,
			})
			if pass != tt.pass {
				t.Errorf("user %q vs req %q: pass = %v (%s), want %v", tt.user, tt.req, pass, reason, tt.pass)
			}
		})
	}
}

func TestEvaluateShortCircuitsOnFirstFailure(t *testing.T) {
	u := testProfile()
	u.TargetJobType = "Internship"
	pass, reason := Engine{User: u}.Evaluate(domain.Posting{
		JobType:       "Full-Time",      // fails first
		ClassStanding: "PhD candidates", // would also fail, never reached
	})
	if pass {
		t.Fatal("expected failure")
	}
	if want := "job type mismatch"; len(reason) < len(want) || reason[:len(want)] != want {
		t.Errorf("reason %q should come from the job type rule", reason)
	}
}
