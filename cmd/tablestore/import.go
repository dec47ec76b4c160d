package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablestore/internal/tableio"
	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/tableformat"
	"github.com/ajitpratap0/tablestore/pkg/tracing"
)

type importOptions struct {
	schemaFile string
	output     string
	format     string
	capacity   int
	noRowKey   bool
}

func newImportCommand(a *app) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV file into a table file",
		Long: `Import a CSV file with a header line into a new table file. The YAML schema file
lists the columns to store and optionally the CSV column holding row keys.
An existing table file at the output path is replaced.

Example:
  tablestore import --schema cities.yaml --out cities.orc cities.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.cfg.Store
			if cmd.Flags().Changed("format") {
				store.Format = opts.format
			}
			if cmd.Flags().Changed("capacity") {
				store.Capacity = opts.capacity
			}
			if opts.noRowKey {
				store.RowKey = false
			}

			n, err := tracing.TraceTable(cmd.Context(), "import", opts.output, func(context.Context) (int64, error) {
				return runImport(args[0], opts.schemaFile, opts.output, store.WriterConfig(a.log), a.log)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s\n", n, opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.schemaFile, "schema", "s", "", "Path to YAML schema file (required)")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Path of the table file to write (required)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Container format: orc or parquet (default from config)")
	cmd.Flags().IntVar(&opts.capacity, "capacity", 0, "Rows per column batch (default from config)")
	cmd.Flags().BoolVar(&opts.noRowKey, "no-row-key", false, "Do not store row keys")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// runImport writes the CSV file at csvPath to a table at output and saves
// the side-car metadata next to it.
func runImport(csvPath, schemaPath, output string, wcfg tableformat.WriterConfig, log *zap.Logger) (int64, error) {
	sf, err := tableio.LoadSchemaFile(schemaPath)
	if err != nil {
		return 0, err
	}
	schema, err := sf.Schema()
	if err != nil {
		return 0, err
	}

	in, err := os.Open(csvPath) //nolint:gosec // G304: input path is chosen by the operator
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeIO, "failed to open CSV file").WithDetail("path", csvPath)
	}
	defer in.Close()

	start := time.Now()
	w, err := tableformat.Create(output, schema, wcfg)
	if err != nil {
		return 0, err
	}

	n, err := tableio.NewCSVImporter(schema, sf.Key, log).Import(in, w)
	if err != nil {
		_ = w.Close()
		return n, err
	}
	if err := w.Close(); err != nil {
		return n, err
	}

	meta := tableformat.NewSettings()
	if err := w.WriteMetadata(meta); err != nil {
		return n, err
	}
	if err := meta.Save(tableformat.SidecarPath(output)); err != nil {
		return n, err
	}

	log.Info("import completed",
		zap.String("table", output),
		zap.String("format", string(w.Info().Format)),
		zap.Int64("rows", n),
		zap.Int64("batches", w.BatchesFlushed()),
		zap.Duration("duration", time.Since(start)))
	return n, nil
}
