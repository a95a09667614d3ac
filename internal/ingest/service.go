package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/csvimport"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/tagparser"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/telemetry"
)

var (
	// ErrNoRecords means the source parsed to zero records; nothing is submitted.
	ErrNoRecords = errors.New("no valid records found")
	// ErrUnreadableSource means the upload could not be decoded at all.
	ErrUnreadableSource = errors.New("unreadable batch source")
	// ErrAttachmentIndex means a file was attached to a record that does not exist.
	ErrAttachmentIndex = errors.New("attachment refers to a missing record")
)

// ReportPublisher announces finished batches.
type ReportPublisher interface {
	Publish(ctx context.Context, report domain.BatchReport) error
}

// Request is one batch submission.
type Request struct {
	Content  []byte
	Filename string
	// Format is detected from Filename and Content when empty.
	Format csvimport.Format
	// RFC4180 parses CSV input with quoted-field support.
	RFC4180 bool
	// Strict rejects tagged input that has untagged lines inside a record.
	Strict bool
	// Attachments maps zero-based record indexes to the selected images.
	Attachments map[int]*media.LocalFile
}

// Result is the outcome of Service.Ingest.
type Result struct {
	Report   domain.BatchReport    `json:"report"`
	Outcomes []domain.BatchOutcome `json:"outcomes"`
}

// PreviewRecord is one parsed record with its schedule classification.
type PreviewRecord struct {
	Index    int                     `json:"index"`
	Record   domain.RawContentRecord `json:"record"`
	Decision domain.ScheduleDecision `json:"schedule"`
}

// Preview is the dry-run result of Service.Preview.
type Preview struct {
	Format       csvimport.Format `json:"format"`
	Records      []PreviewRecord  `json:"records"`
	IgnoredLines []int            `json:"ignored_lines,omitempty"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// Service ties decoding, orchestration, reporting and publishing together.
type Service struct {
	orchestrator *Orchestrator
	resolver     TimeResolver
	publisher    ReportPublisher
	metrics      *telemetry.Metrics
	log          infralogger.Logger
	now          func() time.Time
}

// NewService creates a Service. publisher and metrics may be nil.
func NewService(
	orchestrator *Orchestrator,
	resolver TimeResolver,
	publisher ReportPublisher,
	metrics *telemetry.Metrics,
	log infralogger.Logger,
) *Service {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Service{
		orchestrator: orchestrator,
		resolver:     resolver,
		publisher:    publisher,
		metrics:      metrics,
		log:          log,
		now:          time.Now,
	}
}

// Ingest decodes the request and submits every record. It returns
// ErrNoRecords, without contacting any boundary, when nothing was parsed.
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	decoded, decodeErr := decode(req)
	if decodeErr != nil {
		return nil, decodeErr
	}

	s.metrics.ObserveBatch(len(decoded.records))
	if len(decoded.records) == 0 {
		return nil, ErrNoRecords
	}

	items, itemsErr := attach(decoded.records, req.Attachments)
	if itemsErr != nil {
		return nil, itemsErr
	}

	batchID := uuid.NewString()
	log := infralogger.FromContext(ctx, s.log).With(infralogger.BatchID(batchID))
	log.Info("Batch started",
		infralogger.Int("records", len(items)),
		infralogger.String("format", string(decoded.format)),
		infralogger.Int("attachments", len(req.Attachments)),
	)

	started := s.now()
	outcomes := s.orchestrator.Run(ctx, items)
	report := Summarize(batchID, outcomes, started, s.now())

	log.Info("Batch finished",
		infralogger.String("summary", Headline(report)),
		infralogger.Int("succeeded", report.Succeeded),
		infralogger.Int("failed", report.Failed),
		infralogger.Int("cancelled", report.Cancelled),
	)

	if s.publisher != nil {
		//nolint:contextcheck // the event must go out even when the batch was cancelled
		if publishErr := s.publisher.Publish(context.WithoutCancel(ctx), report); publishErr != nil {
			log.Warn("Failed to publish batch report", infralogger.Error(publishErr))
		}
	}

	return &Result{Report: report, Outcomes: outcomes}, nil
}

// Preview decodes the request and classifies each record without
// uploading or submitting anything.
func (s *Service) Preview(req Request) (*Preview, error) {
	decoded, decodeErr := decode(req)
	if decodeErr != nil {
		return nil, decodeErr
	}

	preview := &Preview{
		Format:       decoded.format,
		Records:      make([]PreviewRecord, len(decoded.records)),
		IgnoredLines: decoded.ignored,
		Warnings:     decoded.warnings,
	}
	for i, record := range decoded.records {
		preview.Records[i] = PreviewRecord{Index: i, Record: record, Decision: s.resolver.Resolve(record)}
	}
	return preview, nil
}

type decodedBatch struct {
	format   csvimport.Format
	records  []domain.RawContentRecord
	ignored  []int
	warnings []string
}

// decode turns a request body into records, normalising spreadsheets first.
func decode(req Request) (decodedBatch, error) {
	format := req.Format
	if format == "" {
		format = csvimport.DetectFormat(req.Filename, req.Content)
	}

	out := decodedBatch{format: format}
	text := string(req.Content)

	switch format {
	case csvimport.FormatCSV:
		if headerErr := csvimport.Validate(csvimport.HeaderOf(text)); headerErr != nil {
			out.warnings = append(out.warnings, headerErr.Error()+"; using the first column as content")
		}
		var opts []csvimport.Option
		if req.RFC4180 {
			opts = append(opts, csvimport.WithRFC4180())
		}
		text = csvimport.Normalize(text, opts...)
	case csvimport.FormatXLSX:
		normalized, xlsxErr := csvimport.NormalizeXLSX(bytes.NewReader(req.Content))
		if xlsxErr != nil {
			return out, fmt.Errorf("%w: %w", ErrUnreadableSource, xlsxErr)
		}
		text = normalized
	case csvimport.FormatTagged:
	default:
		return out, fmt.Errorf("%w: unknown format %q", ErrUnreadableSource, format)
	}

	parsed := tagparser.ParseDetailed(text)
	if req.Strict && len(parsed.IgnoredLines) > 0 {
		return out, fmt.Errorf("%w: %w", ErrUnreadableSource, &tagparser.LineError{Lines: parsed.IgnoredLines})
	}
	out.records = parsed.Records
	if format == csvimport.FormatTagged {
		out.ignored = parsed.IgnoredLines
	}
	return out, nil
}

// Records decodes a request for callers that only need the parsed records.
func Records(req Request) ([]domain.RawContentRecord, error) {
	decoded, err := decode(req)
	return decoded.records, err
}

func attach(records []domain.RawContentRecord, files map[int]*media.LocalFile) ([]Item, error) {
	items := ItemsFromRecords(records)
	for index, file := range files {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("%w: record %d of %d", ErrAttachmentIndex, index+1, len(items))
		}
		items[index].Media = file
	}
	return items, nil
}
