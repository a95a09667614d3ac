package supabase_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/supabase"
)

type fakeObjectStore struct {
	bucket      string
	path        string
	data        []byte
	contentType string
	upsert      bool
	err         error
}

func (f *fakeObjectStore) UploadFile(bucketID, relativePath string, data io.Reader, opts ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	f.bucket = bucketID
	f.path = relativePath
	f.data, _ = io.ReadAll(data)
	if len(opts) > 0 {
		if opts[0].ContentType != nil {
			f.contentType = *opts[0].ContentType
		}
		if opts[0].Upsert != nil {
			f.upsert = *opts[0].Upsert
		}
	}
	return storage_go.FileUploadResponse{}, f.err
}

func (f *fakeObjectStore) GetPublicUrl(bucketID, filePath string, _ ...storage_go.UrlOptions) storage_go.SignedUrlResponse {
	return storage_go.SignedUrlResponse{SignedURL: "https://cdn.example/" + bucketID + "/" + filePath}
}

func TestMediaStore_Upload(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{}
	result, err := supabase.NewMediaStore(store, "").Upload(t.Context(), []byte("png-bytes"), media.UploadMetadata{
		Filename:    "cover.png",
		ContentType: "image/png",
		Extension:   ".png",
	})
	require.NoError(t, err)

	assert.Equal(t, supabase.DefaultBucket, store.bucket)
	assert.True(t, strings.HasSuffix(store.path, ".png"))
	assert.Equal(t, "png-bytes", string(store.data))
	assert.Equal(t, "image/png", store.contentType)
	assert.False(t, store.upsert)
	assert.Equal(t, supabase.DefaultBucket+"/"+store.path, result.DurableID)
	assert.Equal(t, "https://cdn.example/"+supabase.DefaultBucket+"/"+store.path, result.URL)
}

func TestMediaStore_UniqueKeys(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{}
	ms := supabase.NewMediaStore(store, "media")

	first, err := ms.Upload(t.Context(), []byte("a"), media.UploadMetadata{Extension: ".jpg"})
	require.NoError(t, err)
	second, err := ms.Upload(t.Context(), []byte("a"), media.UploadMetadata{Extension: ".jpg"})
	require.NoError(t, err)

	assert.NotEqual(t, first.DurableID, second.DurableID)
}

func TestMediaStore_UploadError(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{err: errors.New("bucket not found")}
	_, err := supabase.NewMediaStore(store, "missing").Upload(t.Context(), []byte("a"), media.UploadMetadata{Filename: "a.png"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")
	assert.Contains(t, err.Error(), "a.png")
}
