// Package supabase submits posts and uploads media through a Supabase
// project's REST and storage APIs.
package supabase

import (
	"errors"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"
)

// ErrMissingCredentials is returned when the project URL or key is unset.
var ErrMissingCredentials = errors.New("supabase url and key are required")

// Config holds the Supabase project settings.
type Config struct {
	URL string
	// Key should be the service-role key; the anon key cannot insert posts.
	Key       string
	PostTable string
	Bucket    string
}

// Querier builds PostgREST queries. *supabase.Client and *postgrest.Client
// both satisfy it.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// NewClient initializes the Supabase SDK client.
func NewClient(cfg Config) (*supabase.Client, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, ErrMissingCredentials
	}
	client, err := supabase.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase SDK: %w", err)
	}
	return client, nil
}
