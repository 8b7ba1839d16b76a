package dedup

import (
	"net/url"
	"strings"
)

// Tracking params dropped during normalization. Prefix families
// (utm_, rx_, _) are handled separately.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"source":       true,
	"src":          true,
	"gh_src":       true, // greenhouse source tag (gh_jid is the job id, keep it)
	"fbclid":       true,
	"gclid":        true,
	"mc_eid":       true,
	"mc_cid":       true,
	"_ga":          true,
	"_gl":          true,
}

// NormalizeURL canonicalizes a posting URL into the identity key used
// for all dedup decisions. Two raw URLs that normalize identically are
// the same posting. Idempotent: NormalizeURL(NormalizeURL(u)) == NormalizeURL(u).
// Never fails; malformed input comes back best-effort unchanged.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	// http and https are the same posting
	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	u.Path = strings.TrimRight(u.Path, "/")

	// Lever and Workable publish an /apply variant of the same job
	// description page; the description page is the canonical one.
	if (strings.Contains(u.Host, "lever.co") || strings.Contains(u.Host, "workable.com")) &&
		strings.HasSuffix(u.Path, "/apply") {
		u.Path = strings.TrimSuffix(u.Path, "/apply")
	}

	// Surviving params keep their original order; url.Values would
	// sort them and merge order-permuted URLs that may not be the
	// same posting.
	var kept []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key, val := pair, ""
		if i := strings.Index(pair, "="); i >= 0 {
			key, val = pair[:i], pair[i+1:]
		}
		dk, err := url.QueryUnescape(key)
		if err != nil {
			dk = key
		}
		lk := strings.ToLower(dk)
		if trackingParams[lk] ||
			strings.HasPrefix(lk, "utm_") ||
			strings.HasPrefix(lk, "rx_") || // Indeed/Radancy tracking
			strings.HasPrefix(lk, "_") {
			continue
		}
		dv, err := url.QueryUnescape(val)
		if err != nil {
			dv = val
		}
		if dv == "" {
			continue
		}
		kept = append(kept, url.QueryEscape(dk)+"="+url.QueryEscape(dv))
	}
	u.RawQuery = strings.Join(kept, "&")

	return u.String()
}
