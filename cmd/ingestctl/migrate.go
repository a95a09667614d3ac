package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/database"
)

type migrateOptions struct {
	path  string
	steps int
}

func newMigrateCommand(a *app) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the posts schema for the postgres driver",
	}
	cmd.PersistentFlags().StringVar(&opts.path, "path", database.DefaultMigrationsPath, "migrations directory")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMigrator(cmd, opts, func(m *database.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return err
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMigrator(cmd, opts, func(m *database.Migrator) error {
				if err := m.Down(opts.steps); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return err
			})
		},
	}
	down.Flags().IntVar(&opts.steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMigrator(cmd, opts, func(m *database.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return err
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func (a *app) withMigrator(cmd *cobra.Command, opts *migrateOptions, fn func(*database.Migrator) error) error {
	db, err := database.NewPostgresConnection(cmd.Context(), a.cfg.Database.Connection())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	m, err := database.NewMigrator(db.DB, opts.path, a.log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}
