package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// LocalFile is an image the user selected for one record.
type LocalFile struct {
	// Path is the local location used as the preview address. Empty for
	// files received over HTTP.
	Path        string
	Name        string
	ContentType string
	Data        []byte
}

// OpenLocalFile reads path and sniffs its content type.
func OpenLocalFile(path string) (*LocalFile, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("read media file: %w", readErr)
	}
	file := NewLocalFile(filepath.Base(path), data)
	file.Path = path
	return file, nil
}

// NewLocalFile wraps in-memory data, sniffing its content type.
func NewLocalFile(name string, data []byte) *LocalFile {
	return &LocalFile{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

// IsImage reports whether the sniffed content type is an image.
func (f *LocalFile) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// Extension returns the canonical extension for the sniffed type, e.g. ".png".
func (f *LocalFile) Extension() string {
	if ext := mimetype.Lookup(baseType(f.ContentType)); ext != nil {
		return ext.Extension()
	}
	return filepath.Ext(f.Name)
}

func baseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(base)
}
