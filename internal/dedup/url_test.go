package dedup

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "greenhouse with utm and trailing slash",
			in:   "http://Boards.Greenhouse.io/Co/jobs/1/?utm_source=x",
			want: "https://boards.greenhouse.io/Co/jobs/1",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
		{
			name: "http forced to https",
			in:   "http://example.com/careers",
			want: "https://example.com/careers",
		},
		{
			name: "lever apply suffix stripped",
			in:   "https://jobs.lever.co/acme/123/apply",
			want: "https://jobs.lever.co/acme/123",
		},
		{
			name: "workable apply suffix stripped",
			in:   "https://apply.workable.com/acme/j/ABC123/apply/",
			want: "https://apply.workable.com/acme/j/ABC123",
		},
		{
			name: "apply not stripped on other hosts",
			in:   "https://example.com/jobs/1/apply",
			want: "https://example.com/jobs/1/apply",
		},
		{
			name: "tracking denylist removed, real params kept",
			in:   "https://boards.greenhouse.io/co/jobs?gh_jid=42&gh_src=newsletter&ref=x&source=y&src=z",
			want: "https://boards.greenhouse.io/co/jobs?gh_jid=42",
		},
		{
			name: "rx and underscore prefixes removed",
			in:   "https://example.com/j?rx_campaign=a&_ga=1&id=9",
			want: "https://example.com/j?id=9",
		},
		{
			name: "fragment dropped",
			in:   "https://example.com/jobs/1#apply-now",
			want: "https://example.com/jobs/1",
		},
		{
			name: "fbclid and gclid removed",
			in:   "https://example.com/jobs/1?fbclid=abc&gclid=def",
			want: "https://example.com/jobs/1",
		},
		{
			name: "surviving params keep their order",
			in:   "https://example.com/jobs?req=9&board=eng&page=2",
			want: "https://example.com/jobs?req=9&board=eng&page=2",
		},
		{
			name: "empty-valued param dropped",
			in:   "https://example.com/jobs?id=7&q=",
			want: "https://example.com/jobs?id=7",
		},
		{
			name: "path casing preserved",
			in:   "HTTPS://EXAMPLE.COM/Jobs/Engineering",
			want: "https://example.com/Jobs/Engineering",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	urls := []string{
		"http://Boards.Greenhouse.io/Co/jobs/1/?utm_source=x",
		"https://jobs.lever.co/acme/123/apply?ref=linkedin",
		"https://example.com/jobs?b=2&a=1",
		"not a url at all",
		"https://example.com/j?rx_c=1&keep=yes#frag",
	}
	for _, u := range urls {
		once := NormalizeURL(u)
		twice := NormalizeURL(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", u, once, twice)
		}
	}
}

func TestNormalizeURLNeverPanics(t *testing.T) {
	inputs := []string{"", "::::", "%zz", "http://", "\x00", "ht tp://x"}
	for _, in := range inputs {
		_ = NormalizeURL(in) // must not panic
	}
}
