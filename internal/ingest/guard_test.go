package ingest_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/circuitbreaker"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
)

func TestGuardedCreator_OpensOnOutage(t *testing.T) {
	t.Parallel()

	creator := newFakeCreator()
	creator.createFunc = func(context.Context, domain.PostPayload) (string, error) {
		return "", errBoundary
	}
	guard := ingest.NewGuardedCreator(creator, circuitbreaker.Config{FailureThreshold: 2, Timeout: time.Hour}, nil)

	for range 2 {
		_, err := guard.CreatePost(t.Context(), domain.PostPayload{Body: "x"})
		require.ErrorIs(t, err, errBoundary)
	}
	assert.Equal(t, circuitbreaker.StateOpen, guard.State())

	_, err := guard.CreatePost(t.Context(), domain.PostPayload{Body: "x"})
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 2, creator.totalCalls(), "open circuit must not reach the boundary")
}

func TestGuardedCreator_RejectionsDoNotTrip(t *testing.T) {
	t.Parallel()

	creator := newFakeCreator()
	creator.createFunc = func(_ context.Context, payload domain.PostPayload) (string, error) {
		return "", fmt.Errorf("insert %q: %w", payload.Body, domain.ErrDuplicatePost)
	}
	guard := ingest.NewGuardedCreator(creator, circuitbreaker.Config{FailureThreshold: 1, Timeout: time.Hour}, nil)

	for range 3 {
		_, err := guard.CreatePost(t.Context(), domain.PostPayload{Body: "dup"})
		require.ErrorIs(t, err, domain.ErrDuplicatePost)
	}
	assert.Equal(t, circuitbreaker.StateClosed, guard.State())
	assert.Equal(t, 3, creator.totalCalls())
}

func TestGuardedCreator_PassesThroughSuccess(t *testing.T) {
	t.Parallel()

	guard := ingest.NewGuardedCreator(newFakeCreator(), circuitbreaker.Config{}, nil)

	id, err := guard.CreatePost(t.Context(), domain.PostPayload{Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "post-hi", id)
}

func TestGuardedCreator_OpenCircuitFailsRecordsIndividually(t *testing.T) {
	t.Parallel()

	creator := newFakeCreator()
	creator.createFunc = func(context.Context, domain.PostPayload) (string, error) {
		return "", errBoundary
	}
	guard := ingest.NewGuardedCreator(creator, circuitbreaker.Config{FailureThreshold: 1, Timeout: time.Hour}, nil)
	orch := newOrchestrator(guard, nil, ingest.WithWorkers(1))

	outcomes := orch.RunRecords(t.Context(), records("a", "b", "c"))

	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		assert.Equal(t, domain.OutcomeFailed, outcome.Kind)
	}
	assert.Equal(t, 1, creator.totalCalls())
}
