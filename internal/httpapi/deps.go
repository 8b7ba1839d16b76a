package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/ingest"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal    *atomic.Value // stores config.Config
	RunStatus *atomic.Value // stores httpapi.RunStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	DeleteJob func(ctx context.Context, db *sql.DB, id int64) error

	// Ingestion entrypoint (injected for testability)
	RunIngest func(ctx context.Context, cfg config.Config) (ingest.Stats, error)
}
