package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/specmock/pkg/config"
	"github.com/getmockd/specmock/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput bool
	logLevel   string
	logFormat  string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "specmock",
	Short: "specmock serves mock responses for a Swagger or OpenAPI document",
	Long: `specmock reads a Swagger 2.0 or OpenAPI 3 document and serves every declared
operation with a response synthesized from its schemas and examples.

Configuration can be provided via flags, SPECMOCK_* environment variables, or a
configuration file passed with --config (or SPECMOCK_CONFIG).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

// newLogger builds the operational logger. Flags win over the configuration.
func newLogger(cfg *config.Configuration, w io.Writer) *slog.Logger {
	level, format := cfg.Logging.Level, cfg.Logging.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	return logging.FromStrings(level, format, w)
}
