package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// DefaultPostTable is used when Config.PostTable is empty.
const DefaultPostTable = "posts"

var errNoRowReturned = errors.New("insert returned no row")

// PostStore creates posts through PostgREST.
type PostStore struct {
	client Querier
	table  string
}

// NewPostStore creates a PostStore writing to table.
func NewPostStore(client Querier, table string) *PostStore {
	if table == "" {
		table = DefaultPostTable
	}
	return &PostStore{client: client, table: table}
}

type insertedRow struct {
	ID string `json:"id"`
}

// CreatePost inserts one post. The SDK call carries no context, so a
// cancelled ctx is only observed before the request is sent.
func (s *PostStore) CreatePost(ctx context.Context, payload domain.PostPayload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var rows []insertedRow
	_, err := s.client.From(s.table).
		Insert(payload, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return "", classify(err)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", fmt.Errorf("create post: %w", errNoRowReturned)
	}
	return rows[0].ID, nil
}

// classify maps PostgREST error codes onto domain rejections. The client
// only reports them inside the error text.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "23505"):
		return fmt.Errorf("%w: %s", domain.ErrDuplicatePost, msg)
	case strings.Contains(msg, "23502"), strings.Contains(msg, "23514"), strings.Contains(msg, "22P02"):
		return fmt.Errorf("%w: %s", domain.ErrPostRejected, msg)
	}
	return fmt.Errorf("create post: %w", err)
}
