package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablestore/internal/tableio"
	"github.com/ajitpratap0/tablestore/pkg/compression"
	"github.com/ajitpratap0/tablestore/pkg/config"
	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/tableformat"
	"github.com/ajitpratap0/tablestore/pkg/tracing"
)

type dumpOptions struct {
	output      string
	compression string
}

func newDumpCommand(a *app) *cobra.Command {
	opts := &dumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <table>",
		Short: "Write the rows of a table file as NDJSON",
		Long: `Write the rows of a table file as newline-delimited JSON. The first line names
the columns; every following line holds a row key and its cells, null for missing.

Example:
  tablestore dump cities.orc --out cities.ndjson.zst --compression zstd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dump := a.cfg.Dump
			if cmd.Flags().Changed("compression") {
				dump.Compression = opts.compression
			}
			alg, err := dump.Algorithm()
			if err != nil {
				return err
			}

			_, err = tracing.TraceTable(cmd.Context(), "dump", args[0], func(context.Context) (int64, error) {
				if opts.output == "" {
					return runDump(cmd.OutOrStdout(), args[0], a.cfg.Store, alg, a.log)
				}

				f, err := os.Create(opts.output) //nolint:gosec // G304: output path is chosen by the operator
				if err != nil {
					return 0, errors.Wrap(err, errors.ErrorTypeIO, "failed to create dump file").WithDetail("path", opts.output)
				}
				n, err := runDump(f, args[0], a.cfg.Store, alg, a.log)
				if err != nil {
					_ = f.Close()
					return n, err
				}
				return n, f.Close()
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Path of the dump file (default stdout)")
	cmd.Flags().StringVar(&opts.compression, "compression", "", "none, gzip, snappy, s2, zstd or lz4 (default from config)")
	return cmd
}

// runDump reads the table at path using its side-car metadata and writes it
// to dst as NDJSON compressed with alg.
func runDump(dst io.Writer, path string, store config.StoreConfig, alg compression.Algorithm, log *zap.Logger) (int64, error) {
	start := time.Now()
	r, err := openTable(path, store, log)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	cw, err := compression.NewWriter(dst, alg, compression.Default)
	if err != nil {
		return 0, err
	}
	n, err := tableio.ExportNDJSON(cw, r, log)
	if err != nil {
		_ = cw.Close()
		return n, err
	}
	if err := cw.Close(); err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeIO, "failed to finish compressed dump")
	}

	log.Info("dump completed",
		zap.String("table", path),
		zap.String("compression", string(alg)),
		zap.Int64("rows", n),
		zap.Duration("duration", time.Since(start)))
	return n, nil
}

// openTable opens a table with the format and row key flag recorded in its
// side-car and the configured batch capacity.
func openTable(path string, store config.StoreConfig, log *zap.Logger) (*tableformat.Reader, error) {
	meta, err := tableformat.LoadSettings(tableformat.SidecarPath(path))
	if err != nil {
		return nil, err
	}
	info, err := tableformat.ReadTableInfo(meta)
	if err != nil {
		return nil, err
	}
	r, err := tableformat.NewReader(store.ReaderConfig(info, log))
	if err != nil {
		return nil, err
	}
	if err := r.Open(path, meta); err != nil {
		return nil, err
	}
	return r, nil
}
