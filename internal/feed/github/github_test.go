package github

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testParser(ageLimit int) *Parser {
	p := New(nil, ageLimit, time.Second)
	p.nowOverride = func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestParseAge(t *testing.T) {
	p := testParser(0)

	cases := []struct {
		in   string
		want int
	}{
		{"3d", 3},
		{"14d", 14},
		{"1w", 7},
		{"2mo", 60},
		{"0d", 0},
		{"Mar 08", 2},
		{"Mar 8", 2},
		{"Dec 31", 69}, // wrapped to previous year
		{"", 999},
		{"yesterday", 999},
	}
	for _, c := range cases {
		if got := p.parseAge(c.in); got != c.want {
			t.Errorf("parseAge(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseMarkdownTable(t *testing.T) {
	md := `# Summer Internships

| Company | Role | Location | Application/Link | Date Posted |
| ------- | ---- | -------- | ---------------- | ----------- |
| **Acme Corp** | SWE Intern | NYC | [Apply](https://boards.greenhouse.io/acme/jobs/1) | 2d |
| ↳ | Data Intern | NYC | [Apply](https://boards.greenhouse.io/acme/jobs/2) | 3d |
| ~~Gone Inc~~ | Closed Intern | SF | [Apply](https://example.com/closed) | 1d |
| Old Co | Stale Intern | LA | [Apply](https://example.com/old) | 30d |
| NoLink Co | Hidden Intern | LA | Closed | 1d |
| Redirect Co | Agg Intern | LA | [Apply](https://simplify.jobs/p/xyz) | 1d |
`
	p := testParser(7)
	jobs := p.parseMarkdownTable(md, "owner/list")

	require.Len(t, jobs, 2)

	require.Equal(t, "Acme Corp", jobs[0].Company)
	require.Equal(t, "SWE Intern", jobs[0].Title)
	require.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", jobs[0].URL)
	require.Equal(t, "owner/list", jobs[0].Source)
	require.Equal(t, 2, jobs[0].AgeDays)

	// ditto row inherits the previous company
	require.Equal(t, "Acme Corp", jobs[1].Company)
	require.Equal(t, "Data Intern", jobs[1].Title)
}

func TestParseMarkdownTableTitleLinkFallback(t *testing.T) {
	md := `| Company | Role | Location |
| --- | --- | --- |
| Acme | [SWE Intern](https://jobs.acme.dev/1) | NYC |
`
	p := testParser(0)
	jobs := p.parseMarkdownTable(md, "owner/list")
	require.Len(t, jobs, 1)
	require.Equal(t, "https://jobs.acme.dev/1", jobs[0].URL)
}

func TestParseHTMLTable(t *testing.T) {
	html := `<table>
<tr><th>Company</th><th>Role</th><th>Location</th><th>Link</th><th>Age</th></tr>
<tr><td>Acme</td><td>SWE Intern</td><td>NYC</td><td><a href="https://boards.greenhouse.io/acme/jobs/1">Apply</a></td><td>1d</td></tr>
<tr><td>↳</td><td>PM Intern</td><td>NYC</td><td><a href="https://boards.greenhouse.io/acme/jobs/2">Apply</a></td><td>2d</td></tr>
<tr><td><del>Dead Co</del></td><td>Closed</td><td>SF</td><td><a href="https://example.com/x">Apply</a></td><td>1d</td></tr>
<tr><td>Agg Co</td><td>Intern</td><td>SF</td><td><a href="https://simplify.jobs/p/x">Apply</a><a href="https://jobs.aggco.com/1">Direct</a></td><td>1d</td></tr>
<tr><td>Slow Co</td><td>Intern</td><td>SF</td><td><a href="https://jobs.slow.co/1">Apply</a></td><td>3w</td></tr>
</table>`

	p := testParser(7)
	jobs := p.parseHTMLTable(html, "owner/list")

	require.Len(t, jobs, 3)
	require.Equal(t, "Acme", jobs[0].Company)
	require.Equal(t, "Acme", jobs[1].Company) // ditto row
	require.Equal(t, "PM Intern", jobs[1].Title)
	require.Equal(t, "Agg Co", jobs[2].Company)
	require.Equal(t, "https://jobs.aggco.com/1", jobs[2].URL) // aggregator link skipped
}

func TestIsValidJobURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", true},
		{"http://jobs.example.com/1", true},
		{"https://simplify.jobs/p/abc", false},
		{"https://github.com/owner/list", false},
		{"https://linkedin.com/company/acme", false},
		{"#top", false},
		{"ftp://example.com", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isValidJobURL(c.url); got != c.want {
			t.Errorf("isValidJobURL(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}
