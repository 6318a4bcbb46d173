package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/specmock/pkg/config"
	"github.com/getmockd/specmock/pkg/datasource"
	"github.com/getmockd/specmock/pkg/mockserver"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

// serveFlags holds the serve command flags. Only flags set on the command
// line override the configuration.
type serveFlags struct {
	configFile     string
	rulesFile      string
	host           string
	port           int
	maxConnections int
	readTimeout    int
	writeTimeout   int
	serverBasePath bool
	randomized     bool
	lazy           bool
	distinct       bool
	rootCount      int
	childCount     int
	seed           uint64
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve SPEC",
	Short: "Serve mock responses for every operation in SPEC",
	Long: `Start an HTTP server answering every operation declared in SPEC, a Swagger 2.0
or OpenAPI 3 document in JSON or YAML ("-" reads stdin).

Responses are synthesized from examples and schemas. By default values come from
a fixed table per format; --randomized draws them from a seeded faker instead.`,
	Example: `  # Serve on the default port
  specmock serve petstore.yaml

  # Random data, regenerated on every request
  specmock serve petstore.yaml --randomized --lazy

  # Override responses with rules
  specmock serve petstore.yaml --rules rules.yaml --port 3000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd, args[0], &serveFlagVals)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals
	serveCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to configuration file")
	serveCmd.Flags().StringVar(&f.rulesFile, "rules", "", "Path to response rules file")
	serveCmd.Flags().StringVar(&f.host, "host", "", "Interface to bind")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP server port")
	serveCmd.Flags().IntVar(&f.maxConnections, "max-connections", config.DefaultMaxConnections, "Maximum concurrent HTTP connections (0 = unlimited)")
	serveCmd.Flags().IntVar(&f.readTimeout, "read-timeout", 0, "Read timeout in seconds")
	serveCmd.Flags().IntVar(&f.writeTimeout, "write-timeout", 0, "Write timeout in seconds")
	serveCmd.Flags().BoolVar(&f.serverBasePath, "server-base-path", false, "Prefix OpenAPI 3 routes with the first server URL path")
	addGenerationFlags(serveCmd, f)
}

// addGenerationFlags registers the flags shared by serve and generate.
func addGenerationFlags(cmd *cobra.Command, f *serveFlags) {
	cmd.Flags().BoolVar(&f.randomized, "randomized", false, "Generate random values instead of fixed defaults")
	cmd.Flags().BoolVar(&f.lazy, "lazy", false, "Generate responses on every request")
	cmd.Flags().BoolVar(&f.distinct, "distinct", false, "Generate each array element separately")
	cmd.Flags().IntVar(&f.rootCount, "root-count", config.DefaultRootArrayCount, "Elements in top-level arrays")
	cmd.Flags().IntVar(&f.childCount, "child-count", config.DefaultChildArrayCount, "Elements in nested arrays")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed (0 = random)")
}

// applyFlags overlays the flags the user set explicitly onto cfg.
func applyFlags(cmd *cobra.Command, f *serveFlags, cfg *config.Configuration) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("rules") {
		cfg.RulesFile = f.rulesFile
	}
	if changed("host") {
		cfg.Host = f.host
	}
	if changed("port") {
		cfg.Port = f.port
	}
	if changed("max-connections") {
		cfg.MaxConnections = f.maxConnections
	}
	if changed("read-timeout") {
		cfg.ReadTimeout = f.readTimeout
	}
	if changed("write-timeout") {
		cfg.WriteTimeout = f.writeTimeout
	}
	if changed("server-base-path") {
		cfg.UseServerBasePath = f.serverBasePath
	}

	g := &cfg.Generation
	if changed("randomized") {
		g.Randomized = f.randomized
	}
	if changed("lazy") {
		g.Lazy = f.lazy
	}
	if changed("distinct") {
		g.DistinctElements = f.distinct
	}
	if changed("root-count") {
		g.RootArrayCount = f.rootCount
	}
	if changed("child-count") {
		g.ChildArrayCount = f.childCount
	}
	if changed("seed") {
		g.Seed = f.seed
	}
}

// newServer builds a mock server from the spec file and layered settings.
func newServer(cmd *cobra.Command, specPath string, f *serveFlags) (*mockserver.Server, *config.Configuration, error) {
	cfg, err := loadConfiguration(f.configFile)
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, f, cfg)

	spec, err := readSpec(specPath, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	opts := []mockserver.Option{mockserver.WithLogger(log)}
	if cfg.RulesFile != "" {
		rules, err := datasource.LoadFromFile(cfg.RulesFile, datasource.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		log.Info("loaded response rules", "file", cfg.RulesFile, "count", rules.Len())
		opts = append(opts, mockserver.WithDatasource(rules))
	}

	srv, err := mockserver.New(spec, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return srv, cfg, nil
}

// runServe starts the server and blocks until ctx is done.
func runServe(ctx context.Context, cmd *cobra.Command, specPath string, f *serveFlags) error {
	srv, _, err := newServer(cmd, specPath, f)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	printServing(cmd.OutOrStdout(), srv)

	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func printServing(w io.Writer, srv *mockserver.Server) {
	doc := srv.Document()
	title := doc.Title
	if title == "" {
		title = "untitled document"
	}
	fmt.Fprintf(w, "Serving %s (%s) on http://%s\n", title, doc.Dialect, srv.Addr())
	fmt.Fprintf(w, "%d endpoints registered\n", len(srv.Endpoints()))
}
