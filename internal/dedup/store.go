package dedup

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	filteredFilename = "filtered_jobs.json"
	seenFilename     = "seen_sources.json"
)

// Store tracks three disjoint sets of normalized URLs:
//
//   - known: postings already persisted to the sink. Rebuilt from the
//     sink once per run, grown in-session, never shrinks within a run.
//   - filtered: postings that failed hard eligibility once. Persisted
//     until explicitly cleared so they are never re-extracted.
//   - seen: source URLs processed at least once. Persisted with a
//     rolling TTL; expired entries are pruned on load, not on query.
//
// Queries never fail: unknown keys are simply not members. A broken
// state file degrades to an empty set (worst case we reprocess), it
// never aborts the run. Single-process access only; the flock guards
// load/save against a concurrently started second run.
type Store struct {
	dataDir string
	ttl     time.Duration

	known    map[string]bool
	filtered map[string]bool
	seen     map[string]time.Time
}

func NewStore(dataDir string, ttl time.Duration) *Store {
	s := &Store{
		dataDir:  dataDir,
		ttl:      ttl,
		known:    make(map[string]bool),
		filtered: make(map[string]bool),
		seen:     make(map[string]time.Time),
	}
	s.loadFiltered()
	s.loadSeen()
	return s
}

// RefreshKnown rebuilds the known set from the sink's current state.
// Call once at the start of a run.
func (s *Store) RefreshKnown(sinkURLs []string) {
	s.known = make(map[string]bool, len(sinkURLs))
	for _, u := range sinkURLs {
		if n := NormalizeURL(u); n != "" {
			s.known[n] = true
		}
	}
	log.Printf("[dedup] refreshed known postings: %d urls", len(s.known))
}

func (s *Store) IsKnown(url string) bool { return s.known[NormalizeURL(url)] }

// AddKnown must be called right after a successful sink write, before
// the next listing, so sink write-then-read latency can't let a
// duplicate through within the run.
func (s *Store) AddKnown(url string) {
	if n := NormalizeURL(url); n != "" {
		s.known[n] = true
	}
}

func (s *Store) IsFiltered(url string) bool { return s.filtered[NormalizeURL(url)] }

func (s *Store) MarkFiltered(url string) {
	n := NormalizeURL(url)
	if n == "" {
		return
	}
	s.filtered[n] = true
	s.saveFiltered()
}

// ClearFiltered drops the filtered set. Use when the user profile
// changes and previously rejected postings may now be eligible.
func (s *Store) ClearFiltered() {
	s.filtered = make(map[string]bool)
	s.saveFiltered()
	log.Printf("[dedup] cleared filtered jobs")
}

func (s *Store) IsSeenSource(url string) bool {
	_, ok := s.seen[NormalizeURL(url)]
	return ok
}

func (s *Store) MarkSeenSource(url string) {
	n := NormalizeURL(url)
	if n == "" {
		return
	}
	s.seen[n] = time.Now().UTC()
	s.saveSeen()
}

func (s *Store) ClearSeenSources() {
	s.seen = make(map[string]time.Time)
	s.saveSeen()
	log.Printf("[dedup] cleared seen sources")
}

// ---- persistence ----
// Write-through after every mutation: a crash mid-run loses at most
// the in-flight item, never the run's progress.

type filteredFile struct {
	FilteredURLs []string `json:"filtered_urls"`
	LastUpdated  string   `json:"last_updated"`
}

type seenFile struct {
	SeenURLs    map[string]string `json:"seen_urls"` // url -> RFC3339
	LastUpdated string            `json:"last_updated"`
}

func (s *Store) loadFiltered() {
	path := filepath.Join(s.dataDir, filteredFilename)
	var f filteredFile
	if !readLocked(path, &f) {
		return
	}
	for _, u := range f.FilteredURLs {
		s.filtered[u] = true
	}
	log.Printf("[dedup] loaded %d filtered urls", len(s.filtered))
}

func (s *Store) saveFiltered() {
	urls := make([]string, 0, len(s.filtered))
	for u := range s.filtered {
		urls = append(urls, u)
	}
	writeLocked(filepath.Join(s.dataDir, filteredFilename), filteredFile{
		FilteredURLs: urls,
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Store) loadSeen() {
	path := filepath.Join(s.dataDir, seenFilename)
	var f seenFile
	if !readLocked(path, &f) {
		return
	}

	// Prune entries older than TTL while loading. Pruning is a side
	// effect of initialization only; queries never prune.
	cutoff := time.Now().Add(-s.ttl)
	expired := 0
	for u, ts := range f.SeenURLs {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil || !t.After(cutoff) {
			expired++
			continue
		}
		s.seen[u] = t
	}
	log.Printf("[dedup] loaded %d seen sources (%d expired)", len(s.seen), expired)
	if expired > 0 {
		s.saveSeen()
	}
}

func (s *Store) saveSeen() {
	m := make(map[string]string, len(s.seen))
	for u, t := range s.seen {
		m[u] = t.Format(time.RFC3339)
	}
	writeLocked(filepath.Join(s.dataDir, seenFilename), seenFile{
		SeenURLs:    m,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	})
}

func readLocked(path string, v any) bool {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err == nil {
		defer lock.Unlock()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[dedup] read %s: %v", filepath.Base(path), err)
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		log.Printf("[dedup] parse %s: %v", filepath.Base(path), err)
		return false
	}
	return true
}

func writeLocked(path string, v any) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err == nil {
		defer lock.Unlock()
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("[dedup] marshal %s: %v", filepath.Base(path), err)
		return
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		log.Printf("[dedup] write %s: %v", filepath.Base(path), err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Printf("[dedup] rename %s: %v", filepath.Base(path), err)
	}
}
