package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNum = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var seasonMonth = map[string]time.Month{
	"spring": time.May,
	"summer": time.August,
	"fall":   time.December,
	"winter": time.December,
}

var (
	monthYearRe  = regexp.MustCompile(`(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})`)
	seasonYearRe = regexp.MustCompile(`(spring|summer|fall|winter)\s+(\d{4})`)
	bareYearRe   = regexp.MustCompile(`^(\d{4})$`)
	notBeforeRe  = regexp.MustCompile(`not\s+graduat\w*\s+before`)
	yearRe       = regexp.MustCompile(`\d{4}`)
)

// ParseGradDate turns "May 2026", "Spring 2026", or "2026" into an
// approximate graduation date (mid-month). A bare year assumes a May
// graduation. ok=false means no date-like text was found.
func ParseGradDate(text string) (t time.Time, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return time.Time{}, false
	}

	if m := monthYearRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[2])
		return time.Date(y, monthNum[m[1]], 15, 0, 0, 0, 0, time.UTC), true
	}
	if m := seasonYearRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[2])
		return time.Date(y, seasonMonth[m[1]], 15, 0, 0, 0, 0, time.UTC), true
	}
	if m := bareYearRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return time.Date(y, time.May, 15, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// checkGradTimeline compares the user's graduation date against a
// posting's timeline requirement. The requirement text is classified
// into one of four shapes, each with its own comparison direction:
//
//	enrollment  "enrolled during Summer 2026"   -> graduate after period
//	minimum     "December 2027 or later"        -> graduate on/after date
//	range       "between Dec 2025 and Jun 2027" -> inclusive window
//	deadline    "must graduate by June 2026"    -> graduate on/before date
//
// "not graduating before X" is a minimum and must be classified ahead
// of the generic "before" deadline keywords.
func checkGradTimeline(userGrad, requirement string) Decision {
	if strings.TrimSpace(requirement) == "" {
		return eligible("no graduation timeline requirement")
	}
	if strings.TrimSpace(userGrad) == "" {
		return eligible("user graduation date not specified")
	}

	userDate, ok := ParseGradDate(userGrad)
	if !ok {
		return indeterminate("could not parse user graduation: " + userGrad)
	}

	req := strings.ToLower(requirement)

	// enrollment-during-period: user must still be a student then
	if strings.Contains(req, "enrolled") || strings.Contains(req, "pursuing") {
		period, ok := ParseGradDate(requirement)
		if !ok {
			return indeterminate("could not parse enrollment period")
		}
		if userDate.After(period) {
			return eligible("user is enrolled through the requested period")
		}
		return ineligible("user graduates (" + userGrad + ") before enrollment period ends")
	}

	// minimum-after: graduate on/after the stated date
	if containsAny(req, "or later", "and later", "after", "no earlier than") {
		min, ok := ParseGradDate(requirement)
		if !ok {
			return indeterminate("could not parse minimum graduation date")
		}
		if !userDate.Before(min) {
			return eligible("user graduation meets minimum")
		}
		return ineligible("user graduates (" + userGrad + ") before minimum (" + requirement + ")")
	}

	// range: "between X and Y", inclusive
	if strings.Contains(req, "between") {
		if dates := monthYearRe.FindAllString(req, -1); len(dates) >= 2 {
			lo, okLo := ParseGradDate(dates[0])
			hi, okHi := ParseGradDate(dates[1])
			if okLo && okHi {
				if !userDate.Before(lo) && !userDate.After(hi) {
					return eligible("user graduation within range")
				}
				return ineligible("user graduates (" + userGrad + ") outside range (" + requirement + ")")
			}
		}
		return indeterminate("could not parse graduation range")
	}

	// "not graduating before X" is a minimum, checked ahead of the
	// deadline keywords so the bare "before" doesn't misclassify it.
	if notBeforeRe.MatchString(req) {
		min, ok := ParseGradDate(requirement)
		if !ok {
			return indeterminate("could not parse minimum graduation date")
		}
		if !userDate.Before(min) {
			return eligible("user graduation on/after minimum")
		}
		return ineligible("user graduates (" + userGrad + ") before minimum (" + requirement + ")")
	}

	// deadline-before: the default classification
	deadline, ok := ParseGradDate(requirement)
	if !ok {
		return indeterminate("could not parse graduation timeline: " + requirement)
	}
	if !userDate.After(deadline) {
		return eligible("user graduates before deadline")
	}
	return ineligible("user graduates (" + userGrad + ") after deadline (" + requirement + ")")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
