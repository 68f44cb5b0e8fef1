// Package hostproc is the reference in-process host: an implementation of
// host.Primitives sufficient to run a graph end to end without a real
// sandboxed guest boundary, plus the ambient configuration and declarative
// graph-loading support a standalone process embedding this engine needs.
package hostproc

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// Config is the process-level configuration an embedder loads before
// assembling a graph: a single struct decoded from the environment rather
// than a flag-per-setting CLI surface. Nothing else in hostproc reads its
// fields; applying them is left to the embedder.
type Config struct {
	// GraphSpecPath is the YAML file describing the graph to build (see
	// graphspec.go). Empty means the caller assembles the graph in code.
	GraphSpecPath string `mapstructure:"graph_spec_path"`
	// LogLevel names the verbosity for the embedder's host.Primitives.Log
	// sink. One of "debug", "info", "warn", "error". InProcess does not
	// filter its Log calls by it.
	LogLevel string `mapstructure:"log_level"`
	// TickTimeout bounds how long a single Driver.TickNode call may run
	// before the caller considers the node wedged. It is advisory: the core
	// itself never yields mid-tick, so it can only be enforced by the caller
	// around the TickNode call; hostproc does not enforce it.
	TickTimeout time.Duration `mapstructure:"tick_timeout"`
}

// DefaultConfig returns the configuration used when neither a .env file nor
// the environment overrides anything.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		TickTimeout: 30 * time.Second,
	}
}

// LoadConfig loads a .env file (if present; a missing file is not an
// error), then decodes the process environment over DefaultConfig using
// mapstructure rather than a dedicated flags package.
func LoadConfig(envPath string) (Config, error) {
	cfg := DefaultConfig()

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	raw := map[string]any{}
	if v, ok := os.LookupEnv("MXL_GRAPH_SPEC_PATH"); ok {
		raw["graph_spec_path"] = v
	}
	if v, ok := os.LookupEnv("MXL_LOG_LEVEL"); ok {
		raw["log_level"] = v
	}
	if v, ok := os.LookupEnv("MXL_TICK_TIMEOUT"); ok {
		raw["tick_timeout"] = v
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return cfg, err
	}

	if err := decoder.Decode(raw); err != nil {
		return cfg, err
	}

	return cfg, nil
}
