package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	supabasesdk "github.com/supabase-community/supabase-go"

	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/api"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/database"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/supabase"
)

const healthPingTimeout = 2 * time.Second

var errCircuitOpen = errors.New("persistence circuit is open")

// Persistence holds the post and media boundaries selected by config.
type Persistence struct {
	Creator  *ingest.GuardedCreator
	Uploader media.Uploader
	db       *sqlx.DB
	checks   []api.HealthCheck
}

// SetupPersistence connects the configured post store and media uploader.
func SetupPersistence(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*Persistence, error) {
	p := &Persistence{Uploader: media.Disabled{}}

	var sdk *supabasesdk.Client
	if cfg.Supabase.Enabled() {
		client, err := supabase.NewClient(supabase.Config{URL: cfg.Supabase.URL, Key: cfg.Supabase.Key})
		if err != nil {
			return nil, err
		}
		sdk = client
	}

	var base ingest.PostCreator
	switch cfg.Persistence.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresConnection(ctx, cfg.Database.Connection())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		p.db = db
		repo := database.NewPostRepository(db)
		base = repo
		p.checks = append(p.checks, api.HealthCheck{Name: "database", Check: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
			defer cancel()
			return repo.Ping(pingCtx)
		}})
		log.Info("Connected to PostgreSQL",
			infralogger.String("host", cfg.Database.Host),
			infralogger.String("database", cfg.Database.Database),
		)
	case config.DriverSupabase:
		if sdk == nil {
			return nil, supabase.ErrMissingCredentials
		}
		base = supabase.NewPostStore(sdk, cfg.Supabase.PostTable)
		log.Info("Using Supabase post store", infralogger.String("table", cfg.Supabase.PostTable))
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.Persistence.Driver)
	}

	if cfg.Media.Enabled && sdk != nil {
		p.Uploader = supabase.NewMediaStore(sdk.Storage, cfg.Media.Bucket)
		log.Info("Media uploads enabled", infralogger.String("bucket", cfg.Media.Bucket))
	}

	p.Creator = ingest.NewGuardedCreator(base, circuitbreaker.Config{
		FailureThreshold: cfg.Persistence.FailureThreshold,
		Timeout:          cfg.Persistence.OpenTimeout,
	}, log)
	p.checks = append(p.checks, api.HealthCheck{Name: "persistence_circuit", Check: func() error {
		if p.Creator.State() == circuitbreaker.StateOpen {
			return errCircuitOpen
		}
		return nil
	}})

	return p, nil
}

// Checks returns the health checks for the connected boundaries.
func (p *Persistence) Checks() []api.HealthCheck {
	return p.checks
}

// Close releases the database connection, if any.
func (p *Persistence) Close() error {
	return database.Close(p.db)
}
