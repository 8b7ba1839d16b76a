package filter

import "testing"

func TestParseStanding(t *testing.T) {
	tests := []struct {
		text  string
		level Level
		ok    bool
	}{
		{"Junior", Junior, true},
		{"freshman", Freshman, true},
		{"3rd year", Junior, true},
		{"Master's student", Graduate, true},
		{"PhD candidate", PhD, true},
		{"Rising Senior", Junior, true},
		{"rising sophomore", Freshman, true},
		{"entering junior year", Sophomore, true},
		{"penultimate year student", Junior, true},
		{"final year of study", Senior, true},
		{"must be a current student", Freshman, true},
		{"currently enrolled at an accredited university", Freshman, true},
		{"matriculated in an undergraduate program", Freshman, true},
		{"pursuing an undergraduate degree", Freshman, true},
		{"", 0, false},
		{"anyone welcome", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			level, ok := ParseStanding(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseStanding(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && level != tt.level {
				t.Errorf("ParseStanding(%q) = %d, want %d", tt.text, level, tt.level)
			}
		})
	}
}

func TestParseStandingRisingFloorsAtFreshman(t *testing.T) {
	level, ok := ParseStanding("rising freshman")
	if !ok || level != Freshman {
		t.Errorf("rising freshman = (%d, %v), want (1, true)", level, ok)
	}
}
