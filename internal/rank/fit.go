package rank

import (
	"fmt"
	"strings"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

// Hours divisors for converting salaries to an hourly equivalent.
const (
	hoursPerYear  = 2080 // 40 hrs/week * 52 weeks
	hoursPerMonth = 173  // ~2080/12
)

var cityAliases = map[string][]string{
	"nyc": {"new york", "new york city", "manhattan"},
	"sf":  {"san francisco", "san fran"},
	"la":  {"los angeles"},
	"dc":  {"washington dc", "washington d.c."},
	"chi": {"chicago"},
	"atl": {"atlanta"},
	"sea": {"seattle"},
	"bos": {"boston"},
	"aus": {"austin"},
	"den": {"denver"},
}

var majorCategories = map[string][]string{
	"computer science":       {"software engineering", "data science/ai/ml", "quantitative finance"},
	"cs":                     {"software engineering", "data science/ai/ml", "quantitative finance"},
	"software engineering":   {"software engineering"},
	"computer engineering":   {"software engineering", "hardware engineering"},
	"electrical engineering": {"hardware engineering", "software engineering"},
	"information technology": {"software engineering"},
	"information systems":    {"software engineering"},
	"data science":           {"data science/ai/ml", "quantitative finance"},
	"statistics":             {"data science/ai/ml", "quantitative finance"},
	"mathematics":            {"data science/ai/ml", "quantitative finance", "software engineering"},
	"applied mathematics":    {"data science/ai/ml", "quantitative finance"},
	"business":               {"product management"},
	"business administration": {"product management"},
	"mba":                   {"product management"},
	"economics":             {"product management", "quantitative finance"},
	"finance":               {"quantitative finance", "product management"},
	"physics":               {"data science/ai/ml", "quantitative finance", "hardware engineering"},
	"mechanical engineering": {"hardware engineering"},
}

// FitScorer sums six independently capped sub-scores:
// company/category 30, major 20, skills 20, location 10, salary 10,
// GPA 10.
type FitScorer struct {
	User config.Profile
}

func (s FitScorer) Score(p domain.Posting) (int, []string) {
	company := CompanyScore(s.User.DreamCompanies, s.User.JobCategories, p.Company, p.Category)
	major := MajorScore(s.User.Majors, s.User.Minors, p.RequiredMajors, p.Category)
	skills := SkillsScore(s.User.Skills, p.RequiredSkills, p.PreferredSkills)
	location := LocationScore(s.User.Locations, s.User.WorkModel, p.Locations, p.Remote, p.WorkModel)
	salary := SalaryScore(s.User.MinHourly, p.SalaryMin, p.SalaryMax, p.SalaryPeriod)
	gpa := GPAScore(s.User.GPA, p.GPARequirement)

	var notes []string
	if major < 15 && len(p.RequiredMajors) > 0 {
		notes = append(notes, "Major: requires "+strings.Join(firstN(p.RequiredMajors, 2), ", "))
	}
	if location < 5 && len(p.Locations) > 0 {
		notes = append(notes, "Location: "+strings.Join(firstN(p.Locations, 2), ", "))
	}
	if salary == 0 && s.User.MinHourly > 0 {
		if hourly, ok := hourlyRate(p.SalaryMin, p.SalaryMax, p.SalaryPeriod); ok {
			notes = append(notes, fmt.Sprintf("Salary: $%.0f/hr (min $%.0f/hr)", hourly, s.User.MinHourly))
		}
	}

	return company + major + skills + location + salary + gpa, notes
}

// CompanyScore: dream company and category match both -> 30, either
// alone -> 20, neither -> 0. Never additive beyond the cap.
func CompanyScore(dreamCompanies, userCategories []string, company, category string) int {
	companyMatch := false
	if company != "" {
		jc := norm(company)
		for _, target := range dreamCompanies {
			tc := norm(target)
			if tc != "" && (strings.Contains(jc, tc) || strings.Contains(tc, jc)) {
				companyMatch = true
				break
			}
		}
	}

	categoryMatch := false
	if category != "" {
		if len(userCategories) == 0 {
			// no preference = any category matches
			categoryMatch = true
		} else {
			jc := norm(category)
			for _, c := range userCategories {
				uc := norm(c)
				if uc != "" && (strings.Contains(jc, uc) || strings.Contains(uc, jc)) {
					categoryMatch = true
					break
				}
			}
		}
	}

	switch {
	case companyMatch && categoryMatch:
		return 30
	case companyMatch || categoryMatch:
		return 20
	default:
		return 0
	}
}

// MajorScore: direct major 20 > "equivalent" 15 > minor 10 >
// category-inferred 15 > "or related" leniency 10 > base 5. No
// requirement at all is full credit.
func MajorScore(majors, minors, requiredMajors []string, category string) int {
	if len(requiredMajors) == 0 && category == "" {
		return 20
	}

	for _, um := range majors {
		u := norm(um)
		for _, jm := range requiredMajors {
			j := norm(jm)
			if strings.Contains(u, j) || strings.Contains(j, u) {
				return 20
			}
			if strings.Contains(j, "equivalent") {
				return 15
			}
		}
	}
	for _, un := range minors {
		u := norm(un)
		for _, jm := range requiredMajors {
			j := norm(jm)
			if strings.Contains(u, j) || strings.Contains(j, u) {
				return 10
			}
		}
	}

	if category != "" {
		jc := norm(category)
		for _, um := range majors {
			for _, rel := range majorCategories[norm(um)] {
				if jc == rel {
					return 15
				}
			}
		}
	}

	for _, jm := range requiredMajors {
		j := norm(jm)
		if strings.Contains(j, "related") || strings.Contains(j, "equivalent") {
			return 10
		}
	}
	return 5
}

// SkillsScore: up to 15 for the required-skill match ratio, up to 5
// for preferred. Word-level overlap counts half.
func SkillsScore(userSkills, required, preferred []string) int {
	if len(userSkills) == 0 {
		return 10 // can't assess, partial credit
	}

	var userNorm []string
	for _, s := range userSkills {
		userNorm = append(userNorm, norm(s))
	}

	requiredScore := 15
	if len(required) > 0 {
		matches := 0.0
		for _, skill := range required {
			sn := norm(skill)
			skillWords := wordSet(sn)
			for _, us := range userNorm {
				if strings.Contains(us, sn) || strings.Contains(sn, us) {
					matches++
					break
				}
				if overlaps(skillWords, wordSet(us)) {
					matches += 0.5
					break
				}
			}
		}
		ratio := matches / float64(len(required))
		if ratio > 1 {
			ratio = 1
		}
		requiredScore = int(ratio * 15)
	}

	preferredScore := 5
	if len(preferred) > 0 {
		matches := 0
		for _, skill := range preferred {
			sn := norm(skill)
			for _, us := range userNorm {
				if strings.Contains(us, sn) || strings.Contains(sn, us) {
					matches++
					break
				}
			}
		}
		ratio := float64(matches) / float64(len(preferred))
		if ratio > 1 {
			ratio = 1
		}
		preferredScore = int(ratio * 5)
	}

	return requiredScore + preferredScore
}

// LocationScore: 10 for remote-acceptance or a city match (alias
// table included), 7 for state/region token overlap, 5 when the job
// is remote but the user wants on-site, 0 otherwise.
func LocationScore(userLocations []string, userWorkModel string, jobLocations []string, jobRemote *bool, jobWorkModel string) int {
	model := norm(userWorkModel)

	if len(userLocations) == 0 || model == "any" {
		return 10
	}

	isRemote := (jobRemote != nil && *jobRemote) || strings.Contains(norm(jobWorkModel), "remote")
	if isRemote {
		if model == "remote" || model == "any" || model == "" {
			return 10
		}
		return 5
	}

	for _, ul := range userLocations {
		u := norm(ul)
		for _, jl := range jobLocations {
			j := norm(jl)
			if strings.Contains(u, j) || strings.Contains(j, u) {
				return 10
			}
			if aliases, ok := cityAliases[u]; ok {
				for _, a := range aliases {
					if strings.Contains(j, a) {
						return 10
					}
				}
			}
			for abbrev, aliases := range cityAliases {
				if strings.Contains(j, abbrev) && anyContains(u, aliases) {
					return 10
				}
				if anyContains(j, aliases) && strings.Contains(u, abbrev) {
					return 10
				}
			}
			// state/region partial (token) overlap
			jTokens := wordSet(strings.ReplaceAll(j, ",", " "))
			for token := range wordSet(strings.ReplaceAll(u, ",", " ")) {
				if len(token) > 1 && jTokens[token] {
					return 7
				}
			}
		}
	}
	return 0
}

// SalaryScore normalizes whatever period the posting quotes to an
// hourly rate: full credit at/above the user minimum, half within 80%
// of it, zero below that.
func SalaryScore(userMinHourly float64, salaryMin, salaryMax *float64, period string) int {
	if userMinHourly <= 0 {
		return 10
	}
	if salaryMin == nil && salaryMax == nil {
		return 5
	}
	hourly, ok := hourlyRate(salaryMin, salaryMax, period)
	if !ok {
		return 5
	}
	switch {
	case hourly >= userMinHourly:
		return 10
	case hourly >= userMinHourly*0.8:
		return 5
	default:
		return 0
	}
}

// GPAScore: full credit at/above the requirement (or no requirement),
// half within 0.3 below, zero further down.
func GPAScore(userGPA float64, requirement *float64) int {
	if requirement == nil || *requirement <= 0 {
		return 10
	}
	if userGPA <= 0 {
		return 5
	}
	switch {
	case userGPA >= *requirement:
		return 10
	case userGPA >= *requirement-0.3:
		return 5
	default:
		return 0
	}
}

func hourlyRate(salaryMin, salaryMax *float64, period string) (float64, bool) {
	salary := salaryMax
	if salary == nil {
		salary = salaryMin
	}
	if salary == nil {
		return 0, false
	}
	switch period {
	case "hourly":
		return *salary, true
	case "yearly":
		return *salary / hoursPerYear, true
	case "monthly":
		return *salary / hoursPerMonth, true
	}
	return 0, false
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func wordSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}

func overlaps(a, b map[string]bool) bool {
	for w := range a {
		if b[w] {
			return true
		}
	}
	return false
}

func anyContains(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstN(xs []string, n int) []string {
	if len(xs) <= n {
		return xs
	}
	return xs[:n]
}
