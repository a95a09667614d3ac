package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/csvimport"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/schedule"
)

var errBadAttach = errors.New("attach must be N=path with N the 1-based record number")

type runOptions struct {
	file    string
	format  string
	attach  []string
	workers int
	rfc4180 bool
	strict  bool
	dryRun  bool
	output  string
}

func newRunCommand(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a batch file",
		Long: `Parse the batch file, upload attached images and submit every record.
Each record is attempted once; the report lists the ones that failed.`,
		Example: `  ingestctl run --file posts.txt
  ingestctl run --file posts.csv --attach 2=cover.png --workers 8
  ingestctl run --file posts.xlsx --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildRequest(opts)
			if err != nil {
				return err
			}
			if opts.dryRun {
				return a.preview(cmd, req, opts.output)
			}
			return a.run(cmd, req, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "batch file (tagged text, .csv or .xlsx)")
	cmd.Flags().StringVar(&opts.format, "format", "auto", "input format: auto, tagged, csv or xlsx")
	cmd.Flags().StringArrayVar(&opts.attach, "attach", nil, "attach an image to a record, as N=path (repeatable)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "records submitted concurrently (default from config)")
	cmd.Flags().BoolVar(&opts.rfc4180, "rfc4180", false, "parse CSV with quoted-field support")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "reject tagged input with untagged lines inside a record")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and classify without submitting")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func buildRequest(opts *runOptions) (ingest.Request, error) {
	content, err := os.ReadFile(opts.file)
	if err != nil {
		return ingest.Request{}, fmt.Errorf("read batch file: %w", err)
	}

	format, ok := csvimport.ParseFormat(opts.format)
	if !ok {
		return ingest.Request{}, fmt.Errorf("unknown format %q", opts.format)
	}

	attachments, err := parseAttachments(opts.attach)
	if err != nil {
		return ingest.Request{}, err
	}

	return ingest.Request{
		Content:     content,
		Filename:    filepath.Base(opts.file),
		Format:      format,
		RFC4180:     opts.rfc4180,
		Strict:      opts.strict,
		Attachments: attachments,
	}, nil
}

func parseAttachments(specs []string) (map[int]*media.LocalFile, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	out := make(map[int]*media.LocalFile, len(specs))
	for _, spec := range specs {
		numStr, path, found := strings.Cut(spec, "=")
		number, convErr := strconv.Atoi(strings.TrimSpace(numStr))
		if !found || convErr != nil || number < 1 || path == "" {
			return nil, fmt.Errorf("%w: %q", errBadAttach, spec)
		}
		file, err := media.OpenLocalFile(path)
		if err != nil {
			return nil, err
		}
		out[number-1] = file
	}
	return out, nil
}

func (a *app) run(cmd *cobra.Command, req ingest.Request, opts *runOptions) error {
	if opts.workers > 0 {
		a.cfg.Ingest.Workers = opts.workers
	}
	if validateErr := a.cfg.Validate(); validateErr != nil {
		return fmt.Errorf("invalid config: %w", validateErr)
	}

	ctx := cmd.Context()
	persistence, err := bootstrap.SetupPersistence(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := persistence.Close(); closeErr != nil {
			a.log.Error("Failed to close persistence", infralogger.Error(closeErr))
		}
	}()

	events := bootstrap.SetupEventPublisher(ctx, a.cfg, a.log)
	defer events.Close(a.log)

	svc, err := bootstrap.NewIngestService(a.cfg, persistence, events.Publisher(), nil, a.log)
	if err != nil {
		return err
	}

	result, err := svc.Ingest(ctx, req)
	if err != nil {
		return err
	}

	if opts.output == "json" {
		return writeJSON(cmd, result)
	}
	renderResult(cmd.OutOrStdout(), result)
	return nil
}

func (a *app) preview(cmd *cobra.Command, req ingest.Request, output string) error {
	loc, err := a.cfg.Ingest.Location()
	if err != nil {
		return fmt.Errorf("load ingest timezone: %w", err)
	}
	resolver := schedule.NewResolver(a.log, schedule.WithLocation(loc))
	svc := ingest.NewService(nil, resolver, nil, nil, a.log)

	preview, err := svc.Preview(req)
	if err != nil {
		return err
	}
	if output == "json" {
		return writeJSON(cmd, preview)
	}
	renderPreview(cmd.OutOrStdout(), preview)
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
