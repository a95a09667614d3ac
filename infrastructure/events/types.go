// Package events defines the batch lifecycle events the content-ingestor
// writes to Redis Streams.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream for batch events.
const StreamName = "content-ingestor:batches"

// DefaultMaxLen caps the stream length. Trimming is approximate.
const DefaultMaxLen = 10000

// EventType represents the type of batch event.
type EventType string

const (
	// BatchCompleted is emitted once per batch after every record has an outcome.
	BatchCompleted EventType = "BATCH_COMPLETED"
)

// BatchEvent is the envelope for batch events.
type BatchEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	BatchID   string    `json:"batch_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}
