package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/getmockd/specmock/pkg/cli/internal/output"
	"github.com/getmockd/specmock/pkg/config"
	"github.com/getmockd/specmock/pkg/document"
)

// loadConfiguration layers defaults, the configuration file and the
// environment. An empty path falls back to SPECMOCK_CONFIG.
func loadConfiguration(path string) (*config.Configuration, error) {
	if path == "" {
		path = config.ConfigFileFromEnv()
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	config.ApplyEnv(cfg)
	return cfg, nil
}

// readSpec reads the document at path; "-" reads stdin. The bytes are
// checked to decode so a typo in the file name or format surfaces here
// instead of as an empty server. A document that decodes but serves nothing
// is reported on stderr.
func readSpec(path string, stdin io.Reader, stderr io.Writer) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read spec: %w", err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid spec %s: %w", path, err)
	}
	if doc.Dialect == document.DialectUnknown {
		output.Warn(stderr, "%s declares neither a swagger nor an openapi version", path)
	}
	if len(doc.Operations) == 0 {
		output.Warn(stderr, "%s declares no operations", path)
	}
	return data, nil
}
