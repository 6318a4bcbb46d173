package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/getmockd/specmock/pkg/cli/internal/output"
	"github.com/getmockd/specmock/pkg/cli/internal/parse"
	"github.com/getmockd/specmock/pkg/mockserver"
)

var (
	routesConfigFile     string
	routesServerBasePath bool
	routesMatch          string
)

// RouteOutput is one row of `specmock routes --json`.
type RouteOutput struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Route       string            `json:"route"`
	OperationID string            `json:"operationId,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

var routesCmd = &cobra.Command{
	Use:   "routes SPEC",
	Short: "List the routing table of SPEC in match order",
	Example: `  # Show every route
  specmock routes petstore.json

  # Which operation answers a request?
  specmock routes petstore.json --match "GET /v2/pet/12"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(routesConfigFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("server-base-path") {
			cfg.UseServerBasePath = routesServerBasePath
		}
		cfg.Generation.Lazy = true

		spec, err := readSpec(args[0], cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		srv, err := mockserver.New(spec, cfg, mockserver.WithLogger(newLogger(cfg, cmd.ErrOrStderr())))
		if err != nil {
			return err
		}

		if routesMatch != "" {
			return printMatch(cmd, srv, routesMatch)
		}
		return printRoutes(cmd, srv)
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().StringVarP(&routesConfigFile, "config", "c", "", "Path to configuration file")
	routesCmd.Flags().BoolVar(&routesServerBasePath, "server-base-path", false, "Prefix OpenAPI 3 routes with the first server URL path")
	routesCmd.Flags().StringVar(&routesMatch, "match", "", `Show the route answering "METHOD /path"`)
}

func printRoutes(cmd *cobra.Command, srv *mockserver.Server) error {
	var rows []RouteOutput
	for _, ep := range srv.Endpoints() {
		rows = append(rows, RouteOutput{
			Method:      ep.Method,
			Path:        ep.Path,
			Route:       ep.Route,
			OperationID: ep.Operation.OperationID,
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if rows == nil {
			rows = []RouteOutput{}
		}
		return output.JSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No routes declared")
		return nil
	}

	tw := output.Table(out)
	fmt.Fprintln(tw, "METHOD\tPATH\tROUTE\tOPERATION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Method, r.Path, r.Route, r.OperationID)
	}
	return tw.Flush()
}

func printMatch(cmd *cobra.Command, srv *mockserver.Server, request string) error {
	method, path, ok := parse.Route(request)
	if !ok {
		return fmt.Errorf("--match %q: %w", request, ErrInvalidRequest)
	}
	ep, params, ok := srv.Match(method, path)
	if !ok {
		return fmt.Errorf("%w %s %s", ErrNoRoute, method, path)
	}

	row := RouteOutput{
		Method:      ep.Method,
		Path:        ep.Path,
		Route:       ep.Route,
		OperationID: ep.Operation.OperationID,
		Params:      params,
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return output.JSON(out, row)
	}

	fmt.Fprintf(out, "%s %s\n", row.Method, row.Path)
	if row.OperationID != "" {
		fmt.Fprintf(out, "  operation: %s\n", row.OperationID)
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s = %s\n", name, params[name])
	}
	return nil
}
