package ingest

import (
	"context"
	"errors"

	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// GuardedCreator fails submissions fast while the persistence boundary is
// down. Each record is still attempted at most once.
type GuardedCreator struct {
	next    PostCreator
	breaker *circuitbreaker.Breaker
}

// NewGuardedCreator wraps next. Rejections of a single payload and
// cancellations do not count against the boundary.
func NewGuardedCreator(next PostCreator, cfg circuitbreaker.Config, log infralogger.Logger) *GuardedCreator {
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool {
			return !domain.IsRejection(err) && !errors.Is(err, context.Canceled)
		}
	}
	if cfg.OnStateChange == nil && log != nil {
		cfg.OnStateChange = func(from, to circuitbreaker.State) {
			log.Warn("Persistence circuit changed state",
				infralogger.String("from", from.String()),
				infralogger.String("to", to.String()),
			)
		}
	}
	return &GuardedCreator{next: next, breaker: circuitbreaker.New(cfg)}
}

func (g *GuardedCreator) CreatePost(ctx context.Context, payload domain.PostPayload) (string, error) {
	var postID string
	err := g.breaker.Execute(func() error {
		id, createErr := g.next.CreatePost(ctx, payload)
		postID = id
		return createErr
	})
	return postID, err
}

// State reports the breaker state for health checks.
func (g *GuardedCreator) State() circuitbreaker.State {
	return g.breaker.State()
}
