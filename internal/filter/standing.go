package filter

import (
	"regexp"
	"strings"
)

// Level is an ordinal class standing. Higher = more senior. Levels are
// comparison values only; they are recomputed per evaluation and never
// persisted.
type Level int

const (
	Freshman  Level = 1
	Sophomore Level = 2
	Junior    Level = 3
	Senior    Level = 4
	Graduate  Level = 5
	PhD       Level = 6
)

// Ordered so containment checks are deterministic ("first year" before
// bare fallthroughs, etc.).
var standingNames = []struct {
	name  string
	level Level
}{
	{"freshman", Freshman},
	{"first year", Freshman},
	{"first-year", Freshman},
	{"1st year", Freshman},
	{"sophomore", Sophomore},
	{"second year", Sophomore},
	{"second-year", Sophomore},
	{"2nd year", Sophomore},
	{"junior", Junior},
	{"third year", Junior},
	{"third-year", Junior},
	{"3rd year", Junior},
	{"senior", Senior},
	{"fourth year", Senior},
	{"fourth-year", Senior},
	{"4th year", Senior},
	{"graduate", Graduate},
	{"masters", Graduate},
	{"master's", Graduate},
	{"phd", PhD},
	{"doctoral", PhD},
}

var (
	risingRe        = regexp.MustCompile(`rising\s+(\w+)`)
	enteringRe      = regexp.MustCompile(`entering\s+(\w+)(?:\s+year)?`)
	penultimateRe   = regexp.MustCompile(`penultimate\s+year`)
	finalYearRe     = regexp.MustCompile(`final\s+year`)
	undergradRe     = regexp.MustCompile(`(matriculated|enrolled|pursuing).{0,20}undergraduate`)
	currentStudentR = regexp.MustCompile(`current\s+student|currently\s+(enrolled|a\s+student)`)
)

// ParseStanding interprets free text like "Junior", "Rising Senior",
// "entering junior year", or "penultimate year" as the minimum class
// standing the student must currently hold. ok=false means the text
// did not match any pattern; callers decide what ambiguity means.
func ParseStanding(text string) (level Level, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0, false
	}

	// Any enrolled student qualifies.
	if currentStudentR.MatchString(text) || undergradRe.MatchString(text) {
		return Freshman, true
	}

	// "rising senior" = currently a junior
	if m := risingRe.FindStringSubmatch(text); m != nil {
		if lv, found := literalLevel(m[1]); found {
			return maxLevel(Freshman, lv-1), true
		}
	}

	// "entering junior year" = currently a sophomore
	if m := enteringRe.FindStringSubmatch(text); m != nil {
		if lv, found := literalLevel(m[1]); found {
			return maxLevel(Freshman, lv-1), true
		}
	}

	// penultimate year of a 4-year program
	if penultimateRe.MatchString(text) {
		return Junior, true
	}
	if finalYearRe.MatchString(text) {
		return Senior, true
	}

	for _, s := range standingNames {
		if strings.Contains(text, s.name) {
			return s.level, true
		}
	}
	return 0, false
}

func literalLevel(word string) (Level, bool) {
	word = strings.ToLower(word)
	for _, s := range standingNames {
		if s.name == word {
			return s.level, true
		}
	}
	return 0, false
}

func maxLevel(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}
