package main

import (
	"fmt"

	"github.com/spf13/cobra"

	infraconfig "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/config"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	debug   bool
	cfg     *config.Config
	log     infralogger.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "ingestctl",
		Short:         "Submit batches of bilingual posts",
		Long:          `Parse tagged text, CSV or XLSX batches and submit every record as a scheduled post or a draft.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", infraconfig.GetConfigPath("config.yml"), "config file")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newRunCommand(a))
	rootCmd.AddCommand(newParseCommand(a))
	rootCmd.AddCommand(newTemplateCommand())
	rootCmd.AddCommand(newMigrateCommand(a))

	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.LoadOptional(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := "warn"
	if a.debug {
		level = "debug"
	}
	log, err := infralogger.New(infralogger.Config{
		Level:       level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.log = log.With(infralogger.String("service", "ingestctl"))
	return nil
}
