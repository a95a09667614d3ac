package database_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/database"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

func newRepository(t *testing.T) (*database.PostRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return database.NewPostRepository(sqlx.NewDb(db, "postgres")), mock
}

func scheduledPayload() domain.PostPayload {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	record := domain.RawContentRecord{
		EnglishContent:     "hello",
		ChineseTranslation: "你好",
		Tags:               []string{"#crypto", "#blockchain"},
	}
	return domain.NewPostPayload(record, domain.ScheduledAt(at))
}

func TestPostRepository_CreatePost(t *testing.T) {
	t.Parallel()

	repo, mock := newRepository(t)
	payload := scheduledPayload()

	mock.ExpectQuery("INSERT INTO posts").
		WithArgs(
			"hello",
			sqlmock.AnyArg(),
			pq.Array([]string{"#crypto", "#blockchain"}),
			pq.Array([]string{}),
			"scheduled",
			payload.ScheduledAt,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("post-1"))

	id, err := repo.CreatePost(t.Context(), payload)
	require.NoError(t, err)
	assert.Equal(t, "post-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CreatePostErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		dbErr     error
		wantErr   error
		rejection bool
	}{
		{
			name:      "duplicate",
			dbErr:     &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"},
			wantErr:   domain.ErrDuplicatePost,
			rejection: true,
		},
		{
			name:      "check violation",
			dbErr:     &pq.Error{Code: "23514", Message: "new row violates check constraint"},
			wantErr:   domain.ErrPostRejected,
			rejection: true,
		},
		{
			name:      "not null violation",
			dbErr:     &pq.Error{Code: "23502", Message: "null value in column"},
			wantErr:   domain.ErrPostRejected,
			rejection: true,
		},
		{
			name:    "connection lost",
			dbErr:   sql.ErrConnDone,
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newRepository(t)
			mock.ExpectQuery("INSERT INTO posts").WillReturnError(tc.dbErr)

			id, err := repo.CreatePost(t.Context(), scheduledPayload())

			require.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, id)
			assert.Equal(t, tc.rejection, domain.IsRejection(err))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_DraftHasNullSchedule(t *testing.T) {
	t.Parallel()

	repo, mock := newRepository(t)
	payload := domain.NewPostPayload(domain.RawContentRecord{EnglishContent: "draft"}, domain.Draft())

	mock.ExpectQuery("INSERT INTO posts").
		WithArgs("draft", sqlmock.AnyArg(), pq.Array([]string{}), pq.Array([]string{}), "draft", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("post-2"))

	_, err := repo.CreatePost(t.Context(), payload)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfig_DSN(t *testing.T) {
	t.Parallel()

	cfg := database.Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "posts", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=posts sslmode=disable", cfg.DSN())
}
