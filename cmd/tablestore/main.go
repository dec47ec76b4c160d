package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablestore/pkg/config"
	"github.com/ajitpratap0/tablestore/pkg/logger"
	"github.com/ajitpratap0/tablestore/pkg/tracing"
)

var version = "0.1.0"

// app carries what every command needs once the root command has loaded
// the configuration.
type app struct {
	configFile string
	cfg        *config.Config
	log        *zap.Logger
	shutdown   tracing.ShutdownFunc
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	shutdown, err := tracing.Init(cfg.Trace, version, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.shutdown = shutdown
	a.log = logger.With(zap.String("component", "tablestore-cli"), zap.String("command", cmd.Name()))
	return nil
}

func (a *app) finish(cmd *cobra.Command, _ []string) error {
	if a.shutdown == nil {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return a.shutdown(ctx)
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tablestore",
		Short: "tablestore - columnar table files",
		Long: `tablestore writes tables of typed, nullable cells to ORC or Parquet files
and reads them back. Each table file has a side-car <file>.meta.json holding its schema.`,
		SilenceUsage:      true,
		PersistentPreRunE:  a.load,
		PersistentPostRunE: a.finish,
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to YAML configuration file (optional)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tablestore v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newImportCommand(a))
	root.AddCommand(newDumpCommand(a))
	root.AddCommand(newSchemaCommand(a))
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := newRootCommand().Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
