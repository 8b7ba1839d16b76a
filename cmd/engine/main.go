package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/dedup"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/extract"
	"jobscout-engine/internal/feed"
	emailfeed "jobscout-engine/internal/feed/email"
	githubfeed "jobscout-engine/internal/feed/github"
	"jobscout-engine/internal/filter"
	"jobscout-engine/internal/httpapi"
	"jobscout-engine/internal/ingest"
	"jobscout-engine/internal/rank"
	"jobscout-engine/internal/scheduler"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/secrets"
	"jobscout-engine/internal/sink"
	"jobscout-engine/internal/store"
)

func main() {
	var (
		scheduled     = flag.Bool("scheduled", false, "keep running: poll on an interval and serve the local API")
		limit         = flag.Int("limit", 0, "cap on newly processed listings per run (0 = no cap)")
		clearFiltered = flag.Bool("clear-filtered", false, "clear the persisted filtered-out set and exit")
		clearSeen     = flag.Bool("clear-seen", false, "clear the persisted seen-sources set and exit")
	)
	flag.Parse()

	dataDir := os.Getenv("JOBSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	loadCfg := func() (config.Config, error) {
		raw, err := config.Load(userCfgPath)
		if err != nil {
			return raw, err
		}
		cfg, vr := config.NormalizeAndValidate(raw)
		for _, w := range vr.Warnings {
			log.Printf("[config] warning: %s", w)
		}
		if !vr.OK() {
			return cfg, fmt.Errorf("invalid config: %v", vr.Errors)
		}
		return cfg, nil
	}

	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}

	deduper := dedup.NewStore(dataDir, cfg.SeenSourcesTTL())
	if *clearFiltered || *clearSeen {
		if *clearFiltered {
			deduper.ClearFiltered()
			log.Printf("[dedup] filtered-out set cleared")
		}
		if *clearSeen {
			deduper.ClearSeenSources()
			log.Printf("[dedup] seen-sources set cleared")
		}
		return
	}

	db, err := store.Open(filepath.Join(dataDir, "jobscout.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	jobSink, err := buildSink(ctx, cfg, db)
	if err != nil {
		log.Fatalf("sink init failed: %v", err)
	}

	if s, ok := jobSink.(*sink.SQLite); ok && cfg.Sink.RetentionDays > 0 {
		if n, err := s.Cleanup(ctx, cfg.Sink.RetentionDays); err != nil {
			log.Printf("[store] cleanup: %v", err)
		} else if n > 0 {
			log.Printf("[store] removed %d jobs older than %d days", n, cfg.Sink.RetentionDays)
		}
	}

	orch := &ingest.Orchestrator{
		Cfg:       cfg,
		Dedup:     deduper,
		Fetcher:   buildFetcher(cfg),
		Extractor: buildExtractor(cfg),
		Filter:    filter.Engine{User: cfg.User},
		Scorer:    rank.FitScorer{User: cfg.User},
		Sink:      jobSink,
	}

	runIngest := func(ctx context.Context, cfg config.Config) (ingest.Stats, error) {
		orch.Reconfigure(cfg, filter.Engine{User: cfg.User}, rank.FitScorer{User: cfg.User})

		listings := collectListings(ctx, buildSources(cfg))
		return orch.Run(ctx, listings, *limit)
	}

	if !*scheduled {
		stats, err := runIngest(ctx, cfg)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}
		log.Printf("done: %s", stats.String())
		return
	}

	serveScheduled(ctx, cfg, userCfgPath, loadCfg, db, orch, runIngest)
}

func buildFetcher(cfg config.Config) scrape.Fetcher {
	limiter := scrape.NewHostLimiter(cfg.Scrape.HostReqPerSec, cfg.Scrape.HostBurst)
	timeout := time.Duration(cfg.Scrape.PageTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return scrape.NewPageScraper(timeout, limiter)
}

func buildExtractor(cfg config.Config) extract.Extractor {
	apiKey := cfg.AI.APIKey
	if apiKey == "" && cfg.AI.KeyringAccount != "" {
		if v, err := secrets.Get(cfg.AI.KeyringAccount); err == nil {
			apiKey = v
		} else {
			log.Printf("[secrets] ai key: %v", err)
		}
	}
	return extract.NewClient(cfg.AI.BaseURL, cfg.AI.Model, apiKey, cfg.AI.MaxTokens)
}

func buildSink(ctx context.Context, cfg config.Config, db *store.DB) (sink.Sink, error) {
	if cfg.Sink.Kind == "sheets" {
		return sink.NewSheets(ctx, cfg.Sink.CredentialsPath, cfg.Sink.SheetID, cfg.Sink.SheetRange)
	}
	return sink.NewSQLite(db), nil
}

func buildSources(cfg config.Config) []feed.Source {
	var sources []feed.Source

	if cfg.Sources.GitHub.Enabled {
		sources = append(sources, githubfeed.New(
			cfg.Sources.GitHub.Repos,
			cfg.Scrape.JobAgeLimitDays,
			time.Duration(cfg.Scrape.PageTimeoutSeconds)*time.Second,
		))
	}

	if cfg.Sources.Email.Enabled {
		em := cfg.Sources.Email
		password := em.AppPassword
		if password == "" && em.KeyringAccount != "" {
			if v, err := secrets.Get(em.KeyringAccount); err == nil {
				password = v
			} else {
				log.Printf("[secrets] imap password: %v", err)
			}
		}
		addr := em.IMAPHost
		if em.IMAPPort != 0 {
			addr = fmt.Sprintf("%s:%d", em.IMAPHost, em.IMAPPort)
		} else {
			addr = em.IMAPHost + ":993"
		}
		sources = append(sources, &emailfeed.Source{
			Addr:          addr,
			Username:      em.Username,
			Password:      password,
			Mailbox:       em.Mailbox,
			SubjectAny:    em.SubjectAny,
			LookbackDays:  em.LookbackDays,
			MaxEmails:     em.MaxEmails,
			LinksPerEmail: em.LinksPerEmail,
		})
	}

	return sources
}

func collectListings(ctx context.Context, sources []feed.Source) []domain.Listing {
	var all []domain.Listing
	for _, src := range sources {
		ls, err := src.Listings(ctx)
		if err != nil {
			log.Printf("[%s] listings: %v", src.Name(), err)
			continue
		}
		all = append(all, ls...)
	}
	return all
}

func serveScheduled(
	ctx context.Context,
	cfg config.Config,
	userCfgPath string,
	loadCfg func() (config.Config, error),
	db *store.DB,
	orch *ingest.Orchestrator,
	runIngest func(ctx context.Context, cfg config.Config) (ingest.Stats, error),
) {
	hub := events.NewHub()
	orch.Hub = hub

	var cfgVal atomic.Value
	cfgVal.Store(cfg)
	var runStatus atomic.Value
	runStatus.Store(httpapi.RunStatus{})

	interval := time.Duration(cfg.Polling.ScrapeMinutes) * time.Minute
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	go scheduler.Every(ctx, interval, "ingest", func(ctx context.Context) error {
		current := cfgVal.Load().(config.Config)
		_, err := runIngest(ctx, current)
		return err
	})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		RunStatus:   &runStatus,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		DeleteJob:   httpapi.DeleteJob,
		RunIngest:   runIngest,
	})

	port := cfg.App.Port
	if port == 0 {
		port = 38471
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s", addr)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Recover,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.Serve(ln))
}
