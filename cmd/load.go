package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/listing-assistant/internal/engine"
)

var loadCSVPath string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the listings dataset from a CSV export",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("load"); err != nil {
			return err
		}

		n, err := loadDataset(cmd.Context(), loadCSVPath)
		if err != nil {
			return err
		}

		zap.L().Info("load complete",
			zap.Int64("rows", n),
			zap.String("table", cfg.Dataset.Table),
			zap.String("csv", loadCSVPath),
		)
		return nil
	},
}

// loadDataset reads path against the configured schema and replaces the
// dataset table with its rows.
func loadDataset(ctx context.Context, path string) (int64, error) {
	schema, err := engine.LoadSchema(cfg.Dataset.SchemaPath)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rows, err := engine.ReadCSV(f, schema)
	if err != nil {
		return 0, err
	}

	backend, err := initDataset(ctx)
	if err != nil {
		return 0, err
	}
	defer backend.Close() //nolint:errcheck

	table := cfg.Dataset.Table
	if table == "" {
		table = schema.Name
	}
	return backend.Replace(ctx, table, schema, rows)
}

func init() {
	loadCmd.Flags().StringVar(&loadCSVPath, "csv", "", "path to CSV file (required)")
	_ = loadCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(loadCmd)
}
