// Package schedule decides whether a record is scheduled or a draft.
package schedule

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// Resolver turns a record's raw time into a ScheduleDecision.
type Resolver struct {
	log      infralogger.Logger
	location *time.Location
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocation sets the zone assumed for timestamps without an offset.
// The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.location = loc
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(log infralogger.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = infralogger.NewNop()
	}
	r := &Resolver{log: log, location: time.UTC}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver(nil)

// Resolve uses a resolver that does not log.
func Resolve(record domain.RawContentRecord) domain.ScheduleDecision {
	return defaultResolver.Resolve(record)
}

// Resolve never fails. A missing or unparseable time yields a draft and
// the raw value is dropped.
func (r *Resolver) Resolve(record domain.RawContentRecord) domain.ScheduleDecision {
	raw := strings.TrimSpace(record.ScheduledTimeRaw)
	if raw == "" {
		return domain.Draft()
	}

	at, ok := r.parse(raw)
	if !ok {
		r.log.Debug("Unparseable scheduled time, saving as draft",
			infralogger.String("scheduled_time", raw),
		)
		return domain.Draft()
	}
	return domain.ScheduledAt(at)
}

func (r *Resolver) parse(raw string) (time.Time, bool) {
	if at, err := time.Parse(time.RFC3339, raw); err == nil {
		return at, true
	}
	at, err := dateparse.ParseIn(raw, r.location)
	if err != nil || at.IsZero() {
		return time.Time{}, false
	}
	return at, true
}
