// Package config loads the tablestore command configuration.
//
// Configuration comes from an optional YAML file, with ${VAR_NAME}
// references replaced from the environment, and is then overridden by
// TABLESTORE_* environment variables (TABLESTORE_STORE_FORMAT,
// TABLESTORE_LOG_LEVEL, ...). Every key has a default, so no file is needed.
//
// Example file:
//
//	log:
//	  level: debug
//	  encoding: console
//	store:
//	  format: parquet
//	  capacity: 4096
//	  row_key: true
//	dump:
//	  compression: zstd
//	trace:
//	  enabled: true
//	  sampling_rate: 0.5
package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/tablestore/pkg/compression"
	"github.com/ajitpratap0/tablestore/pkg/errors"
	"github.com/ajitpratap0/tablestore/pkg/logger"
	"github.com/ajitpratap0/tablestore/pkg/tableformat"
	"github.com/ajitpratap0/tablestore/pkg/tracing"
)

// Config is the complete command configuration.
type Config struct {
	// Log configures the global zap logger
	Log logger.Config `mapstructure:"log"`
	// Store configures table files written and read by the commands
	Store StoreConfig `mapstructure:"store"`
	// Dump configures exported row dumps
	Dump DumpConfig `mapstructure:"dump"`
	// Trace configures OpenTelemetry spans around imports and dumps
	Trace tracing.Config `mapstructure:"trace"`
}

// StoreConfig holds the table writer and reader parameters.
type StoreConfig struct {
	// Format is the container format of new tables: orc or parquet
	Format string `mapstructure:"format"`
	// Capacity is the number of rows per column batch
	Capacity int `mapstructure:"capacity"`
	// RowKey stores row keys in new tables
	RowKey bool `mapstructure:"row_key"`
}

// DumpConfig holds the row dump parameters.
type DumpConfig struct {
	// Compression is one of none, gzip, snappy, s2, zstd, lz4
	Compression string `mapstructure:"compression"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Log: logger.DefaultConfig(),
		Store: StoreConfig{
			Format:   string(tableformat.ORC),
			Capacity: tableformat.DefaultBatchCapacity,
			RowKey:   true,
		},
		Dump: DumpConfig{
			Compression: string(compression.None),
		},
		Trace: tracing.DefaultConfig(),
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := tableformat.ParseFormat(c.Store.Format); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid store.format")
	}
	if c.Store.Capacity <= 0 {
		return errors.Newf(errors.ErrorTypeConfig, "store.capacity must be positive, got %d", c.Store.Capacity)
	}
	if _, err := compression.ParseAlgorithm(c.Dump.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid dump.compression")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid log.level")
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "log.encoding must be json or console, got %q", c.Log.Encoding)
	}
	if c.Trace.SamplingRate < 0 || c.Trace.SamplingRate > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "trace.sampling_rate must be within [0, 1], got %v", c.Trace.SamplingRate)
	}
	return nil
}

// WriterConfig returns the table writer configuration for the store
// section.
func (s StoreConfig) WriterConfig(log *zap.Logger) tableformat.WriterConfig {
	return tableformat.WriterConfig{
		Format:      tableformat.Format(s.Format),
		Capacity:    s.Capacity,
		WriteRowKey: s.RowKey,
		Logger:      log,
	}
}

// ReaderConfig returns the reader configuration for a table described by
// info, with the configured batch capacity.
func (s StoreConfig) ReaderConfig(info tableformat.TableInfo, log *zap.Logger) tableformat.ReaderConfig {
	cfg := tableformat.ReaderConfigFor(info)
	cfg.Capacity = s.Capacity
	cfg.Logger = log
	return cfg
}

// Algorithm returns the parsed dump compression algorithm.
func (d DumpConfig) Algorithm() (compression.Algorithm, error) {
	return compression.ParseAlgorithm(d.Compression)
}
