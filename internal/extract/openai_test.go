package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePostingsBareArray(t *testing.T) {
	reply := `[{"company":"Acme","title":"SWE Intern","job_type":"Internship","locations":["NYC"],"salary_min":45,"salary_period":"hourly","sponsorship_available":false}]`

	got, err := ParsePostings(reply, "https://acme.com/jobs/1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0]
	require.Equal(t, "Acme", p.Company)
	require.Equal(t, "SWE Intern", p.Title)
	require.Equal(t, "Internship", p.JobType)
	require.Equal(t, []string{"NYC"}, p.Locations)
	require.NotNil(t, p.SalaryMin)
	require.Equal(t, 45.0, *p.SalaryMin)
	require.NotNil(t, p.SponsorshipAvailable)
	require.False(t, *p.SponsorshipAvailable)
	require.Equal(t, "https://acme.com/jobs/1", p.SourceURL)
}

func TestParsePostingsFencedWrapper(t *testing.T) {
	reply := "```json\n{\"jobs\":[{\"company\":\"Stripe\",\"title\":\"PM Intern\"}]}\n```"

	got, err := ParsePostings(reply, "https://stripe.com/jobs/2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Stripe", got[0].Company)
	require.Equal(t, "PM Intern", got[0].Title)
}

func TestParsePostingsDropsNamelessRows(t *testing.T) {
	reply := `[{"company":"","title":""},{"company":"Acme","title":"SWE"}]`

	got, err := ParsePostings(reply, "https://x.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Acme", got[0].Company)
}

func TestParsePostingsUnparseableIsRetryable(t *testing.T) {
	for _, reply := range []string{"", "[]", "Sorry, I cannot parse this page."} {
		got, err := ParsePostings(reply, "https://x.com")
		require.NoError(t, err)
		require.Empty(t, got)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n[]\n```", "[]"},
		{"```\n[1]\n```", "[1]"},
		{"  [2]  ", "[2]"},
		{"", ""},
	}
	for _, c := range cases {
		if got := stripFences(c.in); got != c.want {
			t.Errorf("stripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
