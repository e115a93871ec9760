package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigName = "swagger2client.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2client configuration file",
		Long: "Scaffold a commented swagger2client configuration file that documents available options. " +
			"A .toml output path selects the TOML layout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	sample := sampleConfigYAML
	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		sample = sampleConfigTOML
	}
	content := strings.TrimSpace(sample) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2client configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./openapi.yaml

# Targets to emit (ts|dart|python|go|ir). Defaults to ts when omitted.
# targets: [ts, go]

# Output directory. Defaults to ./generated.
# out: ./generated

# Only include operations with these tags (comma-separated or list).
# includeTags: [public, read]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Only include operations using these HTTP methods.
# methods: [get, post]

# Only include paths matching these regular expressions.
# paths: ['^/pets']

# Import of the hand-written runtime helpers, per target.
# runtime:
#   ts: ./user_defined
#   go: example.com/petstore/ud

# Package name of the generated Go file. Derived from the document title when omitted.
# package: petstore

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite generated files whose content changed.
# force: false

# Fail when generated output differs from the files on disk.
# check: false

# Enable verbose logging.
# verbose: false
`

// sampleConfigTOML mirrors sampleConfigYAML for .toml config paths.
const sampleConfigTOML = `# swagger2client configuration (TOML)
# All fields are optional. Command-line flags override config values.

# input = "./openapi.yaml"
# targets = ["ts", "go"]
# out = "./generated"
# includeTags = ["public", "read"]
# excludeTags = ["internal"]
# methods = ["get", "post"]
# paths = ["^/pets"]
# package = "petstore"
# dryRun = false
# force = false
# check = false
# verbose = false

# [runtime]
# ts = "./user_defined"
# go = "example.com/petstore/ud"
`
