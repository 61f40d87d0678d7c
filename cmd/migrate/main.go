// Command migrate copies property data from a SQLite database into Postgres.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/venueworks/av-concierge/internal/migrate"
	"github.com/venueworks/av-concierge/internal/store"
	"github.com/venueworks/av-concierge/pkg/logger"
)

var (
	sqlitePath  string
	postgresURL string
	tables      []string
	initSchema  bool
)

func main() {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Copy property data from SQLite into Postgres",
		Long: `Copies properties, rooms, inventory items, and labor rules from a
per-property SQLite database into the shared Postgres instance. Rows that
already exist in the target are skipped, so re-running is safe.`,
		RunE: run,
	}

	root.Flags().StringVar(&sqlitePath, "sqlite", "", "path to the source SQLite database (required)")
	root.Flags().StringVar(&postgresURL, "postgres", "", "target Postgres connection URL (required)")
	root.Flags().StringSliceVar(&tables, "tables", migrate.Tables, "tables to migrate, in order")
	root.Flags().BoolVar(&initSchema, "init-schema", false, "create target tables if they do not exist")
	root.MarkFlagRequired("sqlite")
	root.MarkFlagRequired("postgres")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logger.New("info")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	source, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer source.Close()

	if err := source.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping source database: %w", err)
	}

	target, err := store.Open(postgresURL)
	if err != nil {
		return fmt.Errorf("failed to open target database: %w", err)
	}
	defer target.Close()

	if initSchema {
		if err := migrate.EnsureSchema(ctx, target); err != nil {
			return fmt.Errorf("failed to create target schema: %w", err)
		}
		log.Info("target schema ensured")
	}

	m := migrate.New(source, target, log)
	results, err := m.Run(ctx, tables)
	if err != nil {
		return err
	}

	for _, res := range results {
		log.Info("migration complete",
			zap.String("table", res.Table),
			zap.Int("copied", res.Copied),
			zap.Int("skipped", res.Skipped),
		)
	}

	return nil
}
