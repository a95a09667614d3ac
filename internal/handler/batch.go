// Package handler serves the batch ingestion HTTP endpoints.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/jwt"
	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/csvimport"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
)

// DefaultMaxUploadBytes caps a request body when no limit is configured.
const DefaultMaxUploadBytes = 32 << 20

// mediaFieldPrefix names multipart image parts: media_1 belongs to the first record.
const mediaFieldPrefix = "media_"

var (
	errMissingContent = errors.New("request needs a text field or a file upload")
	errBadMediaField  = errors.New("media field must be media_<record number>")
	errUnknownFormat  = errors.New("format must be auto, tagged, csv or xlsx")
)

// BatchService is what the handler needs from the ingestion service.
type BatchService interface {
	Ingest(ctx context.Context, req ingest.Request) (*ingest.Result, error)
	Preview(req ingest.Request) (*ingest.Preview, error)
}

// BatchHandler handles batch submissions.
type BatchHandler struct {
	service  BatchService
	logger   infralogger.Logger
	maxBytes int64
}

// NewBatchHandler creates a BatchHandler. maxBytes <= 0 uses DefaultMaxUploadBytes.
func NewBatchHandler(service BatchService, log infralogger.Logger, maxBytes int64) *BatchHandler {
	if log == nil {
		log = infralogger.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &BatchHandler{service: service, logger: log, maxBytes: maxBytes}
}

// jsonBatchRequest is the JSON form of a submission.
type jsonBatchRequest struct {
	Text    string `json:"text"`
	Format  string `json:"format"`
	RFC4180 bool   `json:"rfc4180"`
	Strict  bool   `json:"strict"`
}

// Submit runs a batch and returns every outcome plus the report.
func (h *BatchHandler) Submit(c *gin.Context) {
	req, err := h.bindRequest(c)
	if err != nil {
		infralogger.FromContext(c.Request.Context(), h.logger).Debug("Invalid batch request", infralogger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch request", "details": err.Error()})
		return
	}

	result, err := h.service.Ingest(withSubject(c, h.logger), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// withSubject tags the request logger with the token subject, when the
// route is protected, so batch logs name who submitted them.
func withSubject(c *gin.Context, fallback infralogger.Logger) context.Context {
	ctx := c.Request.Context()
	claims, ok := jwt.GetClaims(c)
	if !ok || claims.Sub == "" {
		return ctx
	}
	log := infralogger.FromContext(ctx, fallback).With(infralogger.String("subject", claims.Sub))
	return infralogger.WithContext(ctx, log)
}

// Preview parses a batch and classifies schedules without submitting.
func (h *BatchHandler) Preview(c *gin.Context) {
	req, err := h.bindRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch request", "details": err.Error()})
		return
	}

	preview, err := h.service.Preview(req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"preview": preview,
		"count":   len(preview.Records),
	})
}

// Template serves the CSV template download.
func (h *BatchHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvimport.TemplateFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvimport.Template()))
}

func (h *BatchHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrNoRecords):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ingest.ErrUnreadableSource), errors.Is(err, ingest.ErrAttachmentIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		infralogger.FromContext(c.Request.Context(), h.logger).Error("Batch processing failed", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process batch"})
	}
}

func (h *BatchHandler) bindRequest(c *gin.Context) (ingest.Request, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return h.bindMultipart(c)
	}

	var body jsonBatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return ingest.Request{}, err
	}
	if body.Text == "" {
		return ingest.Request{}, errMissingContent
	}
	format, err := parseFormat(body.Format)
	if err != nil {
		return ingest.Request{}, err
	}
	return ingest.Request{
		Content: []byte(body.Text),
		Format:  format,
		RFC4180: body.RFC4180,
		Strict:  body.Strict,
	}, nil
}

func (h *BatchHandler) bindMultipart(c *gin.Context) (ingest.Request, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return ingest.Request{}, fmt.Errorf("parse multipart form: %w", err)
	}

	format, err := parseFormat(c.PostForm("format"))
	if err != nil {
		return ingest.Request{}, err
	}
	req := ingest.Request{
		Format:  format,
		RFC4180: formBool(c.PostForm("rfc4180")),
		Strict:  formBool(c.PostForm("strict")),
	}

	if files := form.File["file"]; len(files) > 0 {
		data, readErr := readPart(files[0])
		if readErr != nil {
			return ingest.Request{}, readErr
		}
		req.Content = data
		req.Filename = files[0].Filename
	} else if text := c.PostForm("text"); text != "" {
		req.Content = []byte(text)
	} else {
		return ingest.Request{}, errMissingContent
	}

	for field, headers := range form.File {
		if !strings.HasPrefix(field, mediaFieldPrefix) || len(headers) == 0 {
			continue
		}
		number, convErr := strconv.Atoi(strings.TrimPrefix(field, mediaFieldPrefix))
		if convErr != nil || number < 1 {
			return ingest.Request{}, fmt.Errorf("%w: %s", errBadMediaField, field)
		}
		data, readErr := readPart(headers[0])
		if readErr != nil {
			return ingest.Request{}, readErr
		}
		if req.Attachments == nil {
			req.Attachments = make(map[int]*media.LocalFile)
		}
		req.Attachments[number-1] = media.NewLocalFile(headers[0].Filename, data)
	}

	return req, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	return data, nil
}

func parseFormat(name string) (csvimport.Format, error) {
	format, ok := csvimport.ParseFormat(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnknownFormat, name)
	}
	return format, nil
}

func formBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
