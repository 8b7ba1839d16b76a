// Fetches curated listing repos (raw README over HTTP) and parses
// their job tables. Repos publish either HTML tables or markdown pipe
// tables; we try HTML first and fall back to markdown.
package github

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

const unknownAge = 999

type Parser struct {
	Repos       []config.GitHubRepo
	AgeLimit    int // days; listings older than this are dropped
	Client      *http.Client
	nowOverride func() time.Time // tests
}

func New(repos []config.GitHubRepo, ageLimitDays int, timeout time.Duration) *Parser {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Parser{
		Repos:    repos,
		AgeLimit: ageLimitDays,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (p *Parser) Name() string { return "github" }

// Listings fans out across repos, then dedupes on (company, title, url).
func (p *Parser) Listings(ctx context.Context) ([]domain.Listing, error) {
	var (
		mu  sync.Mutex
		all []domain.Listing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, repo := range p.Repos {
		repo := repo
		g.Go(func() error {
			content, err := p.fetchReadme(gctx, repo)
			if err != nil {
				log.Printf("[github] %s: %v", repo.OwnerRepo, err)
				return nil
			}

			jobs := p.parseHTMLTable(content, repo.OwnerRepo)
			if len(jobs) == 0 {
				jobs = p.parseMarkdownTable(content, repo.OwnerRepo)
			}
			log.Printf("[github] %s: %d recent listings", repo.OwnerRepo, len(jobs))

			mu.Lock()
			all = append(all, jobs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type key struct{ company, title, url string }
	seen := make(map[key]bool)
	out := all[:0]
	for _, l := range all {
		k := key{strings.ToLower(l.Company), strings.ToLower(l.Title), l.URL}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out, nil
}

func (p *Parser) fetchReadme(ctx context.Context, repo config.GitHubRepo) (string, error) {
	branch := repo.Branch
	if branch == "" {
		branch = "main"
	}
	file := repo.Path
	if file == "" {
		file = "README.md"
	}

	body, err := p.fetchRaw(ctx, repo.OwnerRepo, branch, file)
	if err != nil && branch != "main" {
		// configured branch may be stale
		body, err = p.fetchRaw(ctx, repo.OwnerRepo, "main", file)
	}
	return body, err
}

func (p *Parser) fetchRaw(ctx context.Context, ownerRepo, branch, file string) (string, error) {
	url := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", ownerRepo, branch, file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	res, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, res.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, 10<<20))
	return string(b), err
}

// ---------------- HTML tables ----------------

func (p *Parser) parseHTMLTable(content, sourceRepo string) []domain.Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var jobs []domain.Listing
	lastCompany := ""

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		companyCell := cells.Eq(0)
		if companyCell.Find("del, s").Length() > 0 {
			return // closed position
		}
		company := cleanText(companyCell.Text())

		title := cleanText(cells.Eq(1).Text())

		ageDays := 0
		if cells.Length() >= 5 {
			ageDays = p.parseAge(strings.TrimSpace(cells.Eq(4).Text()))
		}
		if p.AgeLimit > 0 && ageDays > p.AgeLimit {
			return
		}

		jobURL := pickApplyLink(cells.Eq(3))
		if !isValidJobURL(jobURL) {
			return
		}

		// ↳ means "same company as the row above"
		if company == "↳" || company == "⎯" || company == "" {
			company = lastCompany
		} else {
			lastCompany = company
		}

		if company == "" || title == "" {
			return
		}
		jobs = append(jobs, domain.Listing{
			Company: company,
			Title:   title,
			URL:     jobURL,
			Source:  sourceRepo,
			AgeDays: ageDays,
		})
	})
	return jobs
}

// pickApplyLink prefers direct employer links over aggregator redirects.
func pickApplyLink(cell *goquery.Selection) string {
	var first, direct string
	cell.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		if first == "" {
			first = href
		}
		if direct == "" && !strings.Contains(strings.ToLower(href), "simplify.jobs") {
			direct = href
		}
	})
	if direct != "" {
		return direct
	}
	return ""
}

// ---------------- Markdown pipe tables ----------------

var (
	mdLinkRe    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	htmlHrefRe  = regexp.MustCompile(`(?i)<a\s+[^>]*href=["']([^"']+)["'][^>]*>`)
	separatorRe = regexp.MustCompile(`^\|[\s\-:|]+\|$`)
	relAgeRe    = regexp.MustCompile(`^(\d+)\s*(d|w|mo)`)
	markupRe    = regexp.MustCompile("[*_~`]")
)

func (p *Parser) parseMarkdownTable(markdown, sourceRepo string) []domain.Listing {
	lines := strings.Split(markdown, "\n")

	headerIdx := -1
	cols := map[string]int{}
	for i, line := range lines {
		if !strings.Contains(line, "|") || !strings.Contains(line, "Company") {
			continue
		}
		headerIdx = i
		for idx, cell := range splitRow(line) {
			c := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case strings.Contains(c, "company"):
				cols["company"] = idx
			case strings.Contains(c, "role"), strings.Contains(c, "position"), strings.Contains(c, "title"):
				cols["title"] = idx
			case strings.Contains(c, "link"), strings.Contains(c, "application"), strings.Contains(c, "apply"):
				cols["link"] = idx
			case strings.Contains(c, "date"), strings.Contains(c, "posted"), strings.Contains(c, "age"):
				cols["date"] = idx
			}
		}
		break
	}
	if headerIdx == -1 {
		log.Printf("[github] %s: no table header found", sourceRepo)
		return nil
	}

	var jobs []domain.Listing
	lastCompany := ""

	for _, line := range lines[headerIdx+2:] {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "|") || separatorRe.MatchString(line) {
			continue
		}
		cells := splitRow(line)

		company, _ := cellLink(cellAt(cells, cols, "company", 0))
		if strings.HasPrefix(company, "~~") || strings.Contains(cellAt(cells, cols, "company", 0), "<del>") {
			continue
		}
		title, titleURL := cellLink(cellAt(cells, cols, "title", 1))

		jobURL := ""
		for _, u := range cellURLs(cellAt(cells, cols, "link", 3)) {
			if isValidJobURL(u) {
				jobURL = u
				break
			}
		}
		if jobURL == "" && isValidJobURL(titleURL) {
			jobURL = titleURL
		}
		if jobURL == "" {
			continue
		}

		datePosted := ""
		if di, ok := cols["date"]; ok && di < len(cells) {
			datePosted = cleanText(cells[di])
		}
		ageDays := p.parseAge(datePosted)
		if p.AgeLimit > 0 && ageDays > p.AgeLimit {
			continue
		}

		company = cleanText(company)
		title = cleanText(title)
		if company == "↳" || company == "" {
			company = lastCompany
		} else {
			lastCompany = company
		}
		if company == "" || title == "" {
			continue
		}
		jobs = append(jobs, domain.Listing{
			Company: company,
			Title:   title,
			URL:     jobURL,
			Source:  sourceRepo,
			AgeDays: ageDays,
		})
	}
	return jobs
}

func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	parts := strings.Split(row, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func cellAt(cells []string, cols map[string]int, name string, fallback int) string {
	idx, ok := cols[name]
	if !ok {
		idx = fallback
	}
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func cellLink(cell string) (text, url string) {
	if m := mdLinkRe.FindStringSubmatch(cell); m != nil {
		return m[1], m[2]
	}
	return cell, ""
}

func cellURLs(cell string) []string {
	var urls []string
	for _, m := range mdLinkRe.FindAllStringSubmatch(cell, -1) {
		urls = append(urls, m[2])
	}
	for _, m := range htmlHrefRe.FindAllStringSubmatch(cell, -1) {
		urls = append(urls, m[1])
	}
	return urls
}

// ---------------- Shared helpers ----------------

func isValidJobURL(u string) bool {
	if u == "" {
		return false
	}
	lu := strings.ToLower(u)
	for _, bad := range []string{
		"simplify.jobs",
		"github.com",
		"linkedin.com/company",
		"twitter.com",
		"youtube.com",
		"#",
	} {
		if strings.Contains(lu, bad) {
			return false
		}
	}
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func cleanText(s string) string {
	s = markupRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func (p *Parser) now() time.Time {
	if p.nowOverride != nil {
		return p.nowOverride()
	}
	return time.Now()
}

// parseAge handles relative forms ("3d", "1w", "2mo") and calendar
// forms ("Jan 01", "Jan 1"). Unparseable values count as old.
func (p *Parser) parseAge(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownAge
	}

	if m := relAgeRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "w":
			return n * 7
		case "mo":
			return n * 30
		default:
			return n
		}
	}

	for _, layout := range []string{"Jan 02", "Jan 2"} {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		today := p.now()
		posted := time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, today.Location())
		if posted.After(today) {
			posted = posted.AddDate(-1, 0, 0)
		}
		days := int(today.Sub(posted).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return days
	}

	return unknownAge
}
