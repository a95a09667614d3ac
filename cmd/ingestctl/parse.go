package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/tagparser"
)

func newParseCommand(_ *app) *cobra.Command {
	opts := &runOptions{format: "auto"}
	var tagged bool

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Print the records recovered from a batch file",
		Long:  `Decode a batch file and print its records as JSON, or re-rendered in the tagged dialect with --tagged.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildRequest(opts)
			if err != nil {
				return err
			}
			records, err := ingest.Records(req)
			if err != nil {
				return err
			}
			if tagged {
				_, writeErr := fmt.Fprint(cmd.OutOrStdout(), tagparser.RenderAll(records))
				return writeErr
			}
			return writeJSON(cmd, records)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "batch file (tagged text, .csv or .xlsx)")
	cmd.Flags().StringVar(&opts.format, "format", "auto", "input format: auto, tagged, csv or xlsx")
	cmd.Flags().BoolVar(&opts.rfc4180, "rfc4180", false, "parse CSV with quoted-field support")
	cmd.Flags().BoolVar(&tagged, "tagged", false, "print records in the tagged dialect")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
