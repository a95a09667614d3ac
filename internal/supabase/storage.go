package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
)

// DefaultBucket is used when Config.Bucket is empty.
const DefaultBucket = "post-media"

// ObjectStore is the part of the storage client the uploader uses.
type ObjectStore interface {
	UploadFile(bucketID, relativePath string, data io.Reader, opts ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID, filePath string, opts ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// MediaStore uploads images to a storage bucket.
type MediaStore struct {
	store  ObjectStore
	bucket string
	now    func() time.Time
}

// NewMediaStore creates a MediaStore for bucket.
func NewMediaStore(store ObjectStore, bucket string) *MediaStore {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &MediaStore{store: store, bucket: bucket, now: time.Now}
}

// Upload stores data under a fresh key and returns the object path as the
// durable id. Objects are never overwritten.
func (s *MediaStore) Upload(ctx context.Context, data []byte, meta media.UploadMetadata) (media.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return media.UploadResult{}, err
	}

	key := s.objectKey(meta.Extension)
	contentType := meta.ContentType
	upsert := false

	_, err := s.store.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return media.UploadResult{}, fmt.Errorf("upload %s to bucket %s: %w", meta.Filename, s.bucket, err)
	}

	return media.UploadResult{
		DurableID: path.Join(s.bucket, key),
		URL:       s.store.GetPublicUrl(s.bucket, key).SignedURL,
	}, nil
}

func (s *MediaStore) objectKey(ext string) string {
	return path.Join(s.now().UTC().Format("2006/01/02"), uuid.NewString()+ext)
}
