package seeder

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/hypetorch/pkg/logger"
)

// SetupLogging initializes the global logger for the seed tool.
func SetupLogging(verbose bool, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `HypeTorch Seed Tool
===================

Generates a synthetic metrics document, uploads it, and checks every read
endpoint against what was uploaded. Some entities are deliberately left out
of some mappings so default values are exercised too.

The upload replaces the service's current document.

Usage:
  go run ./cmd/hype-seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -entities int
        Number of entities to generate (default 200)
  -workers int
        Number of concurrent verification workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Save the generated document to this file
  -verbose
        Log every check
  -help
        Show this help message

Examples:
  go run ./cmd/hype-seed -entities 1000 -url http://localhost:8000
  go run ./cmd/hype-seed -output data/seed.json -verbose
`)
}
