// Package media attaches an optional image upload to a record.
//
// Binding is single shot. A failed upload is reported to the caller, which
// records it and carries on with the record unbound.
package media

import (
	"context"
	"errors"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

// DefaultMaxBytes caps image size when no limit is configured.
const DefaultMaxBytes = 10 << 20

var (
	ErrEmptyFile      = errors.New("media file is empty")
	ErrFileTooLarge   = errors.New("media file exceeds size limit")
	ErrNotImage       = errors.New("media file is not an image")
	ErrUploadDisabled = errors.New("media uploads are not configured")
)

// UploadMetadata describes the object being uploaded.
type UploadMetadata struct {
	Filename    string
	ContentType string
	Extension   string
	Size        int
}

// UploadResult is what the upload boundary returns.
type UploadResult struct {
	DurableID string
	URL       string
}

// Uploader is the media upload capability.
type Uploader interface {
	Upload(ctx context.Context, data []byte, meta UploadMetadata) (UploadResult, error)
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, []byte, UploadMetadata) (UploadResult, error) {
	return UploadResult{}, ErrUploadDisabled
}

// Binder uploads the file selected for a record.
type Binder struct {
	uploader Uploader
	maxBytes int
	log      infralogger.Logger
}

// NewBinder creates a Binder. maxBytes <= 0 uses DefaultMaxBytes.
func NewBinder(uploader Uploader, maxBytes int, log infralogger.Logger) *Binder {
	if uploader == nil {
		uploader = Disabled{}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Binder{uploader: uploader, maxBytes: maxBytes, log: log}
}

// Bind uploads file and returns the reference to attach. A nil file
// returns (nil, nil) without touching the uploader.
func (b *Binder) Bind(ctx context.Context, file *LocalFile) (*domain.MediaRef, error) {
	if file == nil {
		return nil, nil
	}

	if checkErr := b.check(file); checkErr != nil {
		return nil, checkErr
	}

	result, uploadErr := b.uploader.Upload(ctx, file.Data, UploadMetadata{
		Filename:    file.Name,
		ContentType: file.ContentType,
		Extension:   file.Extension(),
		Size:        len(file.Data),
	})
	if uploadErr != nil {
		return nil, fmt.Errorf("upload %s: %w", file.Name, uploadErr)
	}
	if result.DurableID == "" {
		return nil, fmt.Errorf("upload %s: boundary returned no id", file.Name)
	}

	b.log.Debug("Media uploaded",
		infralogger.String("file", file.Name),
		infralogger.String("media_id", result.DurableID),
		infralogger.Int("bytes", len(file.Data)),
	)

	return &domain.MediaRef{
		DurableID:   result.DurableID,
		URL:         result.URL,
		PreviewPath: file.Path,
	}, nil
}

func (b *Binder) check(file *LocalFile) error {
	switch {
	case len(file.Data) == 0:
		return fmt.Errorf("%s: %w", file.Name, ErrEmptyFile)
	case len(file.Data) > b.maxBytes:
		return fmt.Errorf("%s (%d bytes): %w", file.Name, len(file.Data), ErrFileTooLarge)
	case !file.IsImage():
		return fmt.Errorf("%s (%s): %w", file.Name, file.ContentType, ErrNotImage)
	}
	return nil
}
