package filter

// Verdict is the outcome of a single eligibility rule. Indeterminate
// means the rule could not confidently interpret the free text; the
// engine treats that as non-blocking rather than silently dropping a
// posting over a heuristic miss.
type Verdict int

const (
	Eligible Verdict = iota
	Ineligible
	Indeterminate
)

type Decision struct {
	Verdict Verdict
	Reason  string
}

func eligible(reason string) Decision      { return Decision{Eligible, reason} }
func ineligible(reason string) Decision    { return Decision{Ineligible, reason} }
func indeterminate(reason string) Decision { return Decision{Indeterminate, reason} }

// Blocking reports whether this decision should exclude the posting.
// Only an explicit Ineligible blocks; ambiguity passes.
func (d Decision) Blocking() bool { return d.Verdict == Ineligible }
