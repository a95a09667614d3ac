// Package events publishes batch reports to Redis Streams.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	infraevents "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/events"
	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// Publisher publishes batch events to a Redis stream.
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
	log    infralogger.Logger
	now    func() time.Time
}

// NewPublisher creates a new event publisher.
// Returns nil if client is nil.
func NewPublisher(client *redis.Client, stream string, log infralogger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	if stream == "" {
		stream = infraevents.StreamName
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Publisher{
		client: client,
		stream: stream,
		maxLen: infraevents.DefaultMaxLen,
		log:    log,
		now:    time.Now,
	}
}

// Publish appends a BATCH_COMPLETED event carrying report.
func (p *Publisher) Publish(ctx context.Context, report domain.BatchReport) error {
	if p == nil || p.client == nil {
		return nil
	}

	event := infraevents.BatchEvent{
		EventID:   uuid.New(),
		EventType: infraevents.BatchCompleted,
		BatchID:   report.BatchID,
		Timestamp: p.now().UTC(),
		Payload:   report,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_type": string(event.EventType),
			"event":      string(payload),
		},
	})
	if publishErr := result.Err(); publishErr != nil {
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	p.log.Info("Published batch event",
		infralogger.BatchID(report.BatchID),
		infralogger.String("stream", p.stream),
		infralogger.String("stream_id", result.Val()),
	)
	return nil
}
