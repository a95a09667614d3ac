package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// PostgreSQL error classes that mean the row itself was refused.
const (
	codeUniqueViolation  = "23505"
	codeNotNullViolation = "23502"
	codeCheckViolation   = "23514"
	codeInvalidText      = "22P02"
)

const insertPostQuery = `
	INSERT INTO posts (body, metadata, tags, media_ids, status, scheduled_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
`

// PostRepository creates posts in the posts table.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new repository instance
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts one post and returns its id.
func (r *PostRepository) CreatePost(ctx context.Context, payload domain.PostPayload) (string, error) {
	metadata, err := json.Marshal(payload.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var id string
	err = r.db.QueryRowxContext(
		ctx, insertPostQuery,
		payload.Body,
		metadata,
		pq.Array(payload.Tags),
		pq.Array(payload.MediaIDs),
		string(payload.Status),
		payload.ScheduledAt,
	).Scan(&id)
	if err != nil {
		return "", classify(err)
	}

	return id, nil
}

// Ping checks database connectivity for the health endpoint.
func (r *PostRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePost, pqErr.Message)
		case codeNotNullViolation, codeCheckViolation, codeInvalidText:
			return fmt.Errorf("%w: %s", domain.ErrPostRejected, pqErr.Message)
		}
	}
	return fmt.Errorf("failed to create post: %w", err)
}
