package filter

import (
	"testing"
	"time"
)

func TestParseGradDate(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
		ok   bool
	}{
		{"May 2026", time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC), true},
		{"december 2025", time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC), true},
		{"Spring 2026", time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC), true},
		{"Fall 2025", time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC), true},
		{"2026", time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC), true}, // bare year = May
		{"sometime soon", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseGradDate(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseGradDate(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseGradDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCheckGradTimeline(t *testing.T) {
	tests := []struct {
		name        string
		userGrad    string
		requirement string
		want        Verdict
	}{
		{"no requirement", "May 2026", "", Eligible},
		{"no user date", "", "must graduate by June 2026", Eligible},
		{"range inside", "May 2026", "Expected graduation between December 2025 and June 2027", Eligible},
		{"range outside", "May 2028", "graduation between December 2025 and June 2027", Ineligible},
		{"deadline met", "May 2026", "must graduate by June 2026", Eligible},
		{"deadline missed", "May 2027", "must graduate by June 2026", Ineligible},
		{"minimum met", "May 2028", "graduation date December 2027 or later", Eligible},
		{"minimum missed", "May 2026", "graduation date December 2027 or later", Ineligible},
		{"not-before is a minimum, not a deadline", "May 2028", "not graduating before December 2027", Eligible},
		{"not-before missed", "May 2026", "not graduating before December 2027", Ineligible},
		{"enrolled during period, still a student", "May 2027", "must be enrolled during Summer 2026", Eligible},
		{"enrolled during period, already graduated", "May 2026", "must be enrolled during Fall 2026", Ineligible},
		{"unparseable requirement passes", "May 2026", "flexible timeline, ask recruiter", Indeterminate},
		{"unparseable user date passes", "whenever", "must graduate by June 2026", Indeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := checkGradTimeline(tt.userGrad, tt.requirement)
			if d.Verdict != tt.want {
				t.Errorf("verdict = %v (%s), want %v", d.Verdict, d.Reason, tt.want)
			}
			if tt.want != Ineligible && d.Blocking() {
				t.Error("non-ineligible verdict must not block")
			}
		})
	}
}
