package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/specmock/pkg/cli/internal/output"
	"github.com/getmockd/specmock/pkg/cli/internal/parse"
	"github.com/getmockd/specmock/pkg/mockserver"
	"github.com/getmockd/specmock/pkg/response"
)

var (
	generateFlagVals   serveFlags
	generateDefinition string
	generateOperation  string
	generateStatus     int
)

// GenerateOutput is the `specmock generate --operation --json` result.
type GenerateOutput struct {
	Status      int               `json:"status"`
	ContentType string            `json:"contentType,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body"`
}

var generateCmd = &cobra.Command{
	Use:   "generate SPEC",
	Short: "Print a synthesized definition or operation response",
	Example: `  # A Pet as the server would render it
  specmock generate petstore.json --definition Pet

  # The default response of an operation
  specmock generate petstore.json --operation "GET /v2/pet/1"

  # A specific declared status, with random data
  specmock generate petstore.json --operation "GET /v2/pet/1" --status 404 --randomized --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (generateDefinition == "") == (generateOperation == "") {
			return errors.New("exactly one of --definition or --operation is required")
		}
		srv, _, err := newServer(cmd, args[0], &generateFlagVals)
		if err != nil {
			return err
		}
		if generateDefinition != "" {
			return printDefinition(cmd, srv, generateDefinition)
		}
		return printOperation(cmd, srv, generateOperation, generateStatus)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := &generateFlagVals
	generateCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to configuration file")
	generateCmd.Flags().BoolVar(&f.serverBasePath, "server-base-path", false, "Prefix OpenAPI 3 routes with the first server URL path")
	generateCmd.Flags().StringVar(&generateDefinition, "definition", "", "Definition (schema) name to render")
	generateCmd.Flags().StringVar(&generateOperation, "operation", "", `Operation to render as "METHOD /path"`)
	generateCmd.Flags().IntVar(&generateStatus, "status", 0, "Declared status code to render (default: the default response)")
	addGenerationFlags(generateCmd, f)
}

func printDefinition(cmd *cobra.Command, srv *mockserver.Server, name string) error {
	if _, ok := srv.Document().Definitions.Lookup(name); !ok {
		return fmt.Errorf("definition %q not found", name)
	}
	v, ok := srv.Resolver().ResolveDefinition(name)
	if !ok {
		return fmt.Errorf("definition %q resolves to no value", name)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.String())
	return nil
}

func printOperation(cmd *cobra.Command, srv *mockserver.Server, request string, status int) error {
	method, path, ok := parse.Route(request)
	if !ok {
		return fmt.Errorf("--operation %q: %w", request, ErrInvalidRequest)
	}
	ep, _, ok := srv.Match(method, path)
	if !ok {
		return fmt.Errorf("%w %s %s", ErrNoRoute, method, path)
	}

	candidates := srv.Responses(ep)
	chosen := response.Default(candidates)
	if status != 0 {
		found := false
		for _, r := range candidates {
			if r.StatusCode == status {
				chosen, found = r, true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s %s declares no %d response", ep.Method, ep.Path, status)
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return output.JSON(out, GenerateOutput{
			Status:      chosen.StatusCode,
			ContentType: chosen.ContentType,
			Headers:     chosen.Headers,
			Body:        string(chosen.Body),
		})
	}
	fmt.Fprintln(out, string(chosen.Body))
	return nil
}
