// Reads job-alert email over IMAP and extracts application links.
// Messages are fetched with BODY.PEEK[] and only marked \Seen after
// their links have been pulled out.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobscout-engine/internal/domain"
)

type Source struct {
	Addr          string // host:port
	Username      string
	Password      string
	Mailbox       string
	SubjectAny    []string // empty = accept all subjects
	LookbackDays  int
	MaxEmails     int
	LinksPerEmail int
}

func (s *Source) Name() string { return "email" }

type message struct {
	uid     imap.UID
	from    string
	subject string
	raw     []byte
}

func (s *Source) Listings(ctx context.Context) ([]domain.Listing, error) {
	if s.Addr == "" || s.Username == "" || s.Password == "" {
		return nil, errors.New("email source needs addr, username and password")
	}

	c, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil {
			log.Printf("[email] logout: %v", err)
		}
		_ = c.Close()
	}()

	mailbox := s.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := s.fetchUnseen(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	var (
		listings  []domain.Listing
		processed []imap.UID
	)

	for _, m := range msgs {
		subject, body := parseRFC822(m.raw, m.subject)

		if len(s.SubjectAny) > 0 && !containsAnyFold(subject, s.SubjectAny) {
			processed = append(processed, m.uid)
			continue
		}

		urls := filterJobish(extractLinks(body))
		if max := s.linksPerEmail(); len(urls) > max {
			urls = urls[:max]
		}

		company := companyFromAddr(m.from)
		for _, u := range urls {
			listings = append(listings, domain.Listing{
				Company: company,
				Title:   subject,
				URL:     u,
				Source:  "email",
			})
		}
		processed = append(processed, m.uid)
	}

	if len(processed) > 0 {
		if err := markSeen(c, processed); err != nil {
			return listings, fmt.Errorf("mark seen: %w", err)
		}
	}

	log.Printf("[email] %d messages, %d job links", len(msgs), len(listings))
	return listings, nil
}

func (s *Source) dial(ctx context.Context) (*imapclient.Client, error) {
	host := s.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	c, err := imapclient.DialTLS(s.Addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial: %w", err)
	}
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	if err := c.Login(s.Username, s.Password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

func (s *Source) fetchUnseen(ctx context.Context, c *imapclient.Client) ([]message, error) {
	lookback := s.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().AddDate(0, 0, -lookback),
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	// newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	max := s.MaxEmails
	if max <= 0 {
		max = 20
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]message, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var m message
		m.uid = buf.UID
		if buf.Envelope != nil {
			m.subject = decodeWord(buf.Envelope.Subject)
			if len(buf.Envelope.From) > 0 {
				m.from = buf.Envelope.From[0].Addr()
				if m.from == "" {
					m.from = buf.Envelope.From[0].Name
				}
			}
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			m.raw = append([]byte(nil), b...)
		}
		out = append(out, m)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func markSeen(c *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	return cmd.Close()
}

func (s *Source) linksPerEmail() int {
	if s.LinksPerEmail > 0 {
		return s.LinksPerEmail
	}
	return 10
}

// ---------------- Message parsing ----------------

func parseRFC822(raw []byte, fallbackSubject string) (subject, body string) {
	if len(raw) == 0 {
		return fallbackSubject, ""
	}
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return fallbackSubject, string(raw)
	}

	subject = decodeWord(strings.TrimSpace(msg.Header.Get("Subject")))
	if subject == "" {
		subject = fallbackSubject
	}

	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, 6<<20))
	plain, htmlPart := mimeTextParts(msg.Header, bodyRaw)

	switch {
	case plain != "":
		body = plain
	case htmlPart != "":
		body = htmlPart // link extraction handles anchors
	default:
		body = string(bodyRaw)
	}
	return subject, body
}

func mimeTextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeCTE(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeCTE(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 6<<20))
			b = decodeCTE(b, partCTE)

			switch {
			case strings.HasPrefix(pMedia, "multipart/"):
				pl, ht := mimeTextParts(mail.Header(p.Header), b)
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			}
		}
		return bestPlain, bestHTML
	}

	s := decodeCTE(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeCTE(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	case "quoted-printable":
		out, _ := io.ReadAll(io.LimitReader(quotedprintable.NewReader(bytes.NewReader(b)), 6<<20))
		return out
	default:
		return b
	}
}

func decodeWord(s string) string {
	if s == "" {
		return s
	}
	out, err := new(mime.WordDecoder).DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

// ---------------- Link extraction ----------------

var (
	hrefRe  = regexp.MustCompile(`(?is)<a[^>]+href=["']([^"'#]+)["']`)
	nakedRe = regexp.MustCompile(`https?://[^\s<>"']+`)
	tagRe   = regexp.MustCompile(`(?is)<[^>]+>`)
)

func extractLinks(body string) []string {
	var urls []string

	lower := strings.ToLower(body)
	text := body
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<a ") {
		for _, m := range hrefRe.FindAllStringSubmatch(body, -1) {
			if u := strings.TrimSpace(html.UnescapeString(m[1])); u != "" {
				urls = append(urls, u)
			}
		}
		text = html.UnescapeString(tagRe.ReplaceAllString(body, " "))
	}
	for _, u := range nakedRe.FindAllString(text, -1) {
		urls = append(urls, strings.TrimRight(u, ".,);:]\"'"))
	}
	return urls
}

var junkSubstrings = []string{
	"unsubscribe",
	"preferences",
	"privacy",
	"terms",
	"view-in-browser",
	"viewaswebpage",
	"tracking",
	"pixel",
	"beacon",
	"doubleclick",
	"mandrillapp",
	"sendgrid",
	"mailchimp",
	"list-manage",
	"click.",
	"lnkd.in",
	"goo.gl",
	"t.co/",
	"/alerts",
	"/settings",
	"/help",
	"/legal",
	"linkedin.com/comm/notifications",
}

var jobHints = []string{
	"/jobs/",
	"/job/",
	"/career",
	"greenhouse.io",
	"lever.co",
	"myworkdayjobs.com",
	"workday",
	"icims.com",
	"smartrecruiters.com",
	"ashbyhq.com",
	"breezy.hr",
	"jobvite.com",
	"applytojob.com",
}

// filterJobish keeps links that look like job postings and drops
// newsletter plumbing, deduplicating as it goes.
func filterJobish(urls []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(urls))

	for _, u := range urls {
		lu := strings.ToLower(u)

		junk := false
		for _, d := range junkSubstrings {
			if strings.Contains(lu, d) {
				junk = true
				break
			}
		}
		if junk {
			continue
		}

		hinted := false
		for _, h := range jobHints {
			if strings.Contains(lu, h) {
				hinted = true
				break
			}
		}
		if !hinted {
			continue
		}

		if _, dup := seen[lu]; dup {
			continue
		}
		seen[lu] = struct{}{}
		out = append(out, u)
	}
	return out
}

// companyFromAddr guesses a company name from a sender address, for
// display only. "jobs@stripe.com" becomes "Stripe".
func companyFromAddr(from string) string {
	at := strings.LastIndexByte(from, '@')
	if at < 0 {
		return strings.TrimSpace(from)
	}
	domainPart := from[at+1:]
	parts := strings.Split(domainPart, ".")
	if len(parts) < 2 {
		return domainPart
	}
	name := parts[len(parts)-2]
	if name == "" {
		return domainPart
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func containsAnyFold(s string, any []string) bool {
	ls := strings.ToLower(s)
	for _, a := range any {
		if a != "" && strings.Contains(ls, strings.ToLower(a)) {
			return true
		}
	}
	return false
}
