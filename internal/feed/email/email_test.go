package email

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	htmlBody := `<html><body>
<a href="https://boards.greenhouse.io/acme/jobs/1?utm_source=alert">Apply now</a>
<a href="https://example.com/unsubscribe">Unsubscribe</a>
<p>Also see https://jobs.lever.co/acme/123.</p>
</body></html>`

	urls := extractLinks(htmlBody)
	require.Contains(t, urls, "https://boards.greenhouse.io/acme/jobs/1?utm_source=alert")
	require.Contains(t, urls, "https://example.com/unsubscribe")
	require.Contains(t, urls, "https://jobs.lever.co/acme/123")
}

func TestFilterJobish(t *testing.T) {
	in := []string{
		"https://boards.greenhouse.io/acme/jobs/1",
		"https://boards.greenhouse.io/acme/jobs/1", // duplicate
		"https://example.com/unsubscribe",
		"https://jobs.lever.co/acme/123",
		"https://mailchimp.com/x/jobs/99",
		"https://example.com/blog/post",
		"https://company.icims.com/jobs/5",
	}
	out := filterJobish(in)
	require.Equal(t, []string{
		"https://boards.greenhouse.io/acme/jobs/1",
		"https://jobs.lever.co/acme/123",
		"https://company.icims.com/jobs/5",
	}, out)
}

func TestParseRFC822Plain(t *testing.T) {
	raw := []byte("From: jobs@stripe.com\r\n" +
		"Subject: New SWE Intern roles\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Apply here: https://stripe.com/jobs/listing/123\r\n")

	subject, body := parseRFC822(raw, "fallback")
	require.Equal(t, "New SWE Intern roles", subject)
	require.Contains(t, body, "https://stripe.com/jobs/listing/123")
}

func TestCompanyFromAddr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jobs@stripe.com", "Stripe"},
		{"alerts@mail.ziprecruiter.com", "Ziprecruiter"},
		{"Acme Talent", "Acme Talent"},
	}
	for _, c := range cases {
		if got := companyFromAddr(c.in); got != c.want {
			t.Errorf("companyFromAddr(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
