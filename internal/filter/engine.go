package filter

import (
	"log"
	"strings"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

// Phrases that count as an explicit sponsorship denial. Absence of a
// denial is not proof of availability; the engine errs toward
// inclusion.
var noSponsorshipPhrases = []string{
	"no sponsorship", "not sponsor", "cannot sponsor", "won't sponsor",
	"will not sponsor", "unable to sponsor", "not able to sponsor",
	"without sponsorship", "not provide sponsorship",
}

// Engine applies the hard eligibility rules. Failing any rule excludes
// the posting entirely; the fit score never does.
type Engine struct {
	User config.Profile
}

// Evaluate runs the rules in order and short-circuits on the first
// Ineligible. Indeterminate decisions pass: unparseable free text
// never blocks a posting.
func (e Engine) Evaluate(p domain.Posting) (pass bool, reason string) {
	checks := []func(domain.Posting) Decision{
		e.checkJobType,
		e.checkClassStanding,
		e.checkGradTimeline,
		e.checkSeasonYear,
		e.checkWorkAuth,
	}
	for _, check := range checks {
		d := check(p)
		if d.Blocking() {
			return false, d.Reason
		}
		if d.Verdict == Indeterminate {
			log.Printf("[filter] indeterminate (passing): %s", d.Reason)
		}
	}
	return true, "passed all hard filters"
}

func (e Engine) checkJobType(p domain.Posting) Decision {
	want := strings.ToLower(strings.TrimSpace(e.User.TargetJobType))
	if want == "both" {
		return eligible("user accepts any job type")
	}
	got := strings.ToLower(strings.TrimSpace(p.JobType))
	if got == "" {
		return eligible("job type not specified")
	}
	if strings.Contains(got, want) || strings.Contains(want, got) {
		return eligible("job type matches: " + p.JobType)
	}
	return ineligible("job type mismatch: user wants " + e.User.TargetJobType + ", job is " + p.JobType)
}

func (e Engine) checkClassStanding(p domain.Posting) Decision {
	if strings.TrimSpace(p.ClassStanding) == "" {
		return eligible("no class standing requirement")
	}
	if strings.TrimSpace(e.User.ClassStanding) == "" {
		return eligible("user is graduated")
	}

	userLevel, userOK := ParseStanding(e.User.ClassStanding)
	if !userOK {
		return indeterminate("could not parse user standing: " + e.User.ClassStanding)
	}
	jobLevel, jobOK := ParseStanding(p.ClassStanding)
	if !jobOK {
		return indeterminate("could not parse job requirement: " + p.ClassStanding)
	}

	if userLevel >= jobLevel {
		return eligible("user (" + e.User.ClassStanding + ") meets requirement (" + p.ClassStanding + ")")
	}
	return ineligible("user (" + e.User.ClassStanding + ") below requirement (" + p.ClassStanding + ")")
}

func (e Engine) checkGradTimeline(p domain.Posting) Decision {
	return checkGradTimeline(e.User.GraduationDate, p.GraduationTimeline)
}

func (e Engine) checkSeasonYear(p domain.Posting) Decision {
	user := strings.ToLower(strings.TrimSpace(e.User.TargetSeason))
	if user == "" {
		return eligible("user has no season/year preference")
	}
	job := strings.ToLower(strings.TrimSpace(p.SeasonYear))
	if job == "" {
		return eligible("job has no season/year specified")
	}
	if user == job {
		return eligible("season/year matches: " + p.SeasonYear)
	}

	jobYear := yearRe.FindString(job)
	if jobYear == "" {
		// "Summer" with no year can't be called a mismatch
		return eligible("job has no year specified: " + p.SeasonYear)
	}
	if userYear := yearRe.FindString(user); userYear == jobYear {
		// same year, different season is close enough
		return eligible("year matches: " + jobYear)
	}
	return ineligible("season/year mismatch: user wants " + e.User.TargetSeason + ", job is " + p.SeasonYear)
}

func (e Engine) checkWorkAuth(p domain.Posting) Decision {
	user := strings.ToLower(strings.TrimSpace(e.User.WorkAuth))
	if user == "" {
		return eligible("user authorization not specified")
	}

	denied := p.SponsorshipAvailable != nil && !*p.SponsorshipAvailable
	req := strings.ToLower(p.WorkAuthorization)
	for _, kw := range noSponsorshipPhrases {
		if strings.Contains(req, kw) {
			denied = true
			break
		}
	}

	needsSponsorship := containsAny(user, "needs sponsorship", "need sponsorship", "requires sponsorship", "require sponsorship")
	if needsSponsorship {
		if denied {
			return ineligible("user needs sponsorship but job does not sponsor")
		}
		return eligible("user needs sponsorship, job may sponsor")
	}

	// Citizens and permanent residents meet any requirement.
	if containsAny(user, "citizen", "green card", "permanent resident") {
		return eligible("user (" + e.User.WorkAuth + ") meets any authorization requirement")
	}

	// OPT/CPT is a gray area that should never auto-exclude.
	if containsAny(user, "opt", "cpt") {
		if denied {
			return eligible("user (" + e.User.WorkAuth + ") may meet temporary requirement")
		}
		return eligible("user (" + e.User.WorkAuth + ") authorized to work")
	}

	return indeterminate("could not determine authorization match")
}
