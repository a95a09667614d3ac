// Package ingest runs batches of records through media binding, schedule
// resolution and submission.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/telemetry"
)

// DefaultWorkers bounds concurrent submissions when no value is configured.
const DefaultWorkers = 4

// PostCreator is the persistence boundary. It is called once per record.
type PostCreator interface {
	CreatePost(ctx context.Context, payload domain.PostPayload) (string, error)
}

// MediaBinder uploads the optional file for a record.
type MediaBinder interface {
	Bind(ctx context.Context, file *media.LocalFile) (*domain.MediaRef, error)
}

// TimeResolver classifies a record as scheduled or draft.
type TimeResolver interface {
	Resolve(record domain.RawContentRecord) domain.ScheduleDecision
}

// Item is one record and the file selected for it, if any.
type Item struct {
	Record domain.RawContentRecord
	Media  *media.LocalFile
}

// ItemsFromRecords wraps records that have no media.
func ItemsFromRecords(records []domain.RawContentRecord) []Item {
	items := make([]Item, len(records))
	for i, record := range records {
		items[i] = Item{Record: record}
	}
	return items
}

// Orchestrator processes every record of a batch independently.
type Orchestrator struct {
	creator  PostCreator
	binder   MediaBinder
	resolver TimeResolver
	workers  int
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
	log      infralogger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the number of records processed concurrently.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithTelemetry attaches metrics and a tracer.
func WithTelemetry(p *telemetry.Provider) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.metrics = p.Metrics
			o.tracer = p.Tracer
		}
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	creator PostCreator,
	binder MediaBinder,
	resolver TimeResolver,
	log infralogger.Logger,
	opts ...Option,
) *Orchestrator {
	if log == nil {
		log = infralogger.NewNop()
	}
	o := &Orchestrator{
		creator:  creator,
		binder:   binder,
		resolver: resolver,
		workers:  DefaultWorkers,
		tracer:   otel.Tracer("content-ingestor"),
		log:      log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunRecords runs records that have no media attached.
func (o *Orchestrator) RunRecords(ctx context.Context, records []domain.RawContentRecord) []domain.BatchOutcome {
	return o.Run(ctx, ItemsFromRecords(records))
}

// Run returns exactly one outcome per item, in item order. It never
// aborts: a failed record does not affect any other. Cancelling ctx stops
// dispatch; records that were not started are reported as cancelled.
func (o *Orchestrator) Run(ctx context.Context, items []Item) []domain.BatchOutcome {
	outcomes := make([]domain.BatchOutcome, len(items))
	if len(items) == 0 {
		return outcomes
	}

	// Each worker writes only the slots it received, so outcomes needs no lock.
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(o.workers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = o.process(ctx, i, items[i])
			}
		}()
	}

	dispatched := o.dispatch(ctx, jobs, len(items))
	close(jobs)
	wg.Wait()

	for i := dispatched; i < len(items); i++ {
		outcomes[i] = cancelledOutcome(i, items[i].Record.Clone(), ctx.Err())
		o.metrics.ObserveRecord(outcomes[i], 0)
	}
	if dispatched < len(items) {
		o.log.Warn("Batch cancelled before all records were dispatched",
			infralogger.Int("dispatched", dispatched),
			infralogger.Int("total", len(items)),
		)
	}

	return outcomes
}

// dispatch feeds indexes to the workers and returns how many were sent.
func (o *Orchestrator) dispatch(ctx context.Context, jobs chan<- int, total int) int {
	for i := range total {
		if ctx.Err() != nil {
			return i
		}
		select {
		case <-ctx.Done():
			return i
		case jobs <- i:
		}
	}
	return total
}

func (o *Orchestrator) process(ctx context.Context, index int, item Item) (outcome domain.BatchOutcome) {
	start := time.Now()
	record := item.Record.Clone()
	log := o.log.With(infralogger.RecordIndex(index))

	ctx, span := o.tracer.Start(ctx, "ingest.record", trace.WithAttributes(
		attribute.Int("record.index", index),
		attribute.Bool("record.has_media", item.Media != nil),
	))
	defer span.End()

	var mediaErr *domain.ErrorDetail
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Record processing panicked", infralogger.Any("panic", rec))
			outcome = failedOutcome(index, record, outcome.Decision, fmt.Errorf("panic: %v", rec))
			outcome.MediaError = mediaErr
		}
		o.finish(span, &outcome, time.Since(start))
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return cancelledOutcome(index, record, ctxErr)
	}

	ref, bindErr := o.binder.Bind(ctx, item.Media)
	if bindErr != nil {
		mediaErr = domain.NewErrorDetail(domain.StageMedia, bindErr)
		log.Warn("Media upload failed, continuing without media", infralogger.Error(bindErr))
	} else if ref != nil {
		record.AttachedMedia = ref
	}

	decision := o.resolver.Resolve(record)
	payload := domain.NewPostPayload(record, decision)

	postID, submitErr := o.creator.CreatePost(ctx, payload)
	switch {
	case submitErr == nil:
		outcome = domain.BatchOutcome{
			Index:    index,
			Kind:     domain.OutcomeSucceeded,
			Success:  true,
			Source:   record,
			PostID:   postID,
			Decision: decision,
		}
	case isCancellation(ctx, submitErr):
		outcome = cancelledOutcome(index, record, submitErr)
		outcome.Decision = decision
	default:
		log.Warn("Record submission failed", infralogger.Error(submitErr))
		outcome = failedOutcome(index, record, decision, submitErr)
	}

	outcome.MediaError = mediaErr
	return outcome
}

func (o *Orchestrator) finish(span trace.Span, outcome *domain.BatchOutcome, elapsed time.Duration) {
	span.SetAttributes(attribute.String("record.outcome", string(outcome.Kind)))
	if outcome.Error != nil {
		span.SetStatus(codes.Error, outcome.Error.Message)
	}
	o.metrics.ObserveRecord(*outcome, elapsed)
}

func isCancellation(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	return ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded)
}

func failedOutcome(index int, record domain.RawContentRecord, decision domain.ScheduleDecision, err error) domain.BatchOutcome {
	return domain.BatchOutcome{
		Index:    index,
		Kind:     domain.OutcomeFailed,
		Source:   record,
		Error:    domain.NewErrorDetail(domain.StageSubmit, err),
		Decision: decision,
	}
}

func cancelledOutcome(index int, record domain.RawContentRecord, cause error) domain.BatchOutcome {
	if cause == nil {
		cause = context.Canceled
	}
	return domain.BatchOutcome{
		Index:  index,
		Kind:   domain.OutcomeCancelled,
		Source: record,
		Error:  domain.NewErrorDetail(domain.StageCancelled, cause),
	}
}
