package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TABLESTORE"

// Load reads the configuration file at path, if path is not empty, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: config path is chosen by the operator
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file").WithDetail("path", path)
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader([]byte(substituteEnvVars(string(data))))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse config file").WithDetail("path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper returns a viper instance carrying every default. Defaults must
// be registered key by key for environment overrides to reach Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := NewConfig()
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.development", def.Log.Development)
	v.SetDefault("log.encoding", def.Log.Encoding)
	v.SetDefault("log.output_paths", def.Log.OutputPaths)
	v.SetDefault("store.format", def.Store.Format)
	v.SetDefault("store.capacity", def.Store.Capacity)
	v.SetDefault("store.row_key", def.Store.RowKey)
	v.SetDefault("dump.compression", def.Dump.Compression)
	v.SetDefault("trace.enabled", def.Trace.Enabled)
	v.SetDefault("trace.sampling_rate", def.Trace.SamplingRate)
	v.SetDefault("trace.pretty_print", def.Trace.PrettyPrint)
	return v
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Substituted values are not expanded again.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
