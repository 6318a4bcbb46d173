package config

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvPort             = "SPECMOCK_PORT"
	EnvHost             = "SPECMOCK_HOST"
	EnvMaxConnections   = "SPECMOCK_MAX_CONNECTIONS"
	EnvReadTimeout      = "SPECMOCK_READ_TIMEOUT"
	EnvWriteTimeout     = "SPECMOCK_WRITE_TIMEOUT"
	EnvServerBasePath   = "SPECMOCK_SERVER_BASE_PATH"
	EnvRootArrayCount   = "SPECMOCK_ROOT_ARRAY_COUNT"
	EnvChildArrayCount  = "SPECMOCK_CHILD_ARRAY_COUNT"
	EnvRandomized       = "SPECMOCK_RANDOMIZED"
	EnvLazy             = "SPECMOCK_LAZY"
	EnvDistinctElements = "SPECMOCK_DISTINCT_ELEMENTS"
	EnvSeed             = "SPECMOCK_SEED"
	EnvLogLevel         = "SPECMOCK_LOG_LEVEL"
	EnvLogFormat        = "SPECMOCK_LOG_FORMAT"
	EnvRulesFile        = "SPECMOCK_RULES"
	EnvConfig           = "SPECMOCK_CONFIG"
)

// ApplyEnv overlays values present in the environment onto cfg. Values that
// fail to parse are ignored.
func ApplyEnv(cfg *Configuration) {
	setInt(EnvPort, &cfg.Port)
	setString(EnvHost, &cfg.Host)
	setInt(EnvMaxConnections, &cfg.MaxConnections)
	setInt(EnvReadTimeout, &cfg.ReadTimeout)
	setInt(EnvWriteTimeout, &cfg.WriteTimeout)
	setBool(EnvServerBasePath, &cfg.UseServerBasePath)

	g := &cfg.Generation
	setInt(EnvRootArrayCount, &g.RootArrayCount)
	setInt(EnvChildArrayCount, &g.ChildArrayCount)
	setBool(EnvRandomized, &g.Randomized)
	setBool(EnvLazy, &g.Lazy)
	setBool(EnvDistinctElements, &g.DistinctElements)
	if v := os.Getenv(EnvSeed); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			g.Seed = seed
		}
	}

	setString(EnvLogLevel, &cfg.Logging.Level)
	setString(EnvLogFormat, &cfg.Logging.Format)
	setString(EnvRulesFile, &cfg.RulesFile)
}

// ConfigFileFromEnv returns the configuration file named by SPECMOCK_CONFIG.
func ConfigFileFromEnv() string {
	return os.Getenv(EnvConfig)
}

func setInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
