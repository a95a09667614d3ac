package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/events"
)

func TestBatchEvent_JSONFieldNames(t *testing.T) {
	t.Parallel()

	event := events.BatchEvent{
		EventID:   uuid.MustParse("6f0e2a4c-7c1b-4d59-9f53-2b9e6f6f4a10"),
		EventType: events.BatchCompleted,
		BatchID:   "batch-1",
		Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Payload:   map[string]int{"total": 3},
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "BATCH_COMPLETED", decoded["event_type"])
	assert.Equal(t, "batch-1", decoded["batch_id"])
	assert.Equal(t, "2024-01-15T10:00:00Z", decoded["timestamp"])
	assert.Equal(t, map[string]any{"total": float64(3)}, decoded["payload"])
}
