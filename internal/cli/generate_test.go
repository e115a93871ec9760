package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureConfig runs the root command with args and returns the resolved
// generate config. It swaps the package-level runner, so callers must not
// run in parallel.
func captureConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, err
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}
	return captured, nil
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured, err := captureConfig(t,
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--targets", "TS,go,ts",
		"--out", "./build",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--methods", "GET,post",
		"--paths", "^/pets",
		"--runtime", "go=example.com/api/ud",
		"--package", "api",
		"--dry-run",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if want := []string{"ts", "go"}; !equalStringSlices(captured.Targets, want) {
		t.Errorf("targets mismatch: got %v", captured.Targets)
	}
	if captured.Out != "./build" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", captured.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", captured.ExcludeTags)
	}
	if want := []string{"get", "post"}; !equalStringSlices(captured.Methods, want) {
		t.Errorf("methods mismatch: got %v", captured.Methods)
	}
	if want := []string{"^/pets"}; !equalStringSlices(captured.Paths, want) {
		t.Errorf("paths mismatch: got %v", captured.Paths)
	}
	if got := captured.Runtime["go"]; got != "example.com/api/ud" {
		t.Errorf("runtime mismatch: got %q", got)
	}
	if captured.Package != "api" {
		t.Errorf("package mismatch: got %q", captured.Package)
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !captured.Force {
		t.Errorf("expected force true")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured, err := captureConfig(t, "generate", "--input", "spec.yaml")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if want := []string{"ts"}; !equalStringSlices(captured.Targets, want) {
		t.Errorf("targets: want %v got %v", want, captured.Targets)
	}
	if captured.Out != "./generated" {
		t.Errorf("out: want ./generated got %q", captured.Out)
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
targets: [dart, python]
out: from-config
includeTags:
  - cfgFoo
exclude_tags: cfgBar
runtime:
  dart: package:api/ud.dart
package: cfgpkg
dryRun: true
force: false
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	captured, err := captureConfig(t,
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--dry-run=false",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if want := []string{"dart", "python"}; !equalStringSlices(captured.Targets, want) {
		t.Errorf("targets: want %v got %v", want, captured.Targets)
	}
	if captured.Out != "from-config" {
		t.Errorf("out: want from-config got %q", captured.Out)
	}
	if want := []string{"flagTag"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, captured.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, captured.ExcludeTags)
	}
	if got := captured.Runtime["dart"]; got != "package:api/ud.dart" {
		t.Errorf("runtime mismatch: got %q", got)
	}
	if captured.Package != "cfgpkg" {
		t.Errorf("package mismatch: got %q", captured.Package)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigFromTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "swagger2client.toml")
	configContent := strings.TrimSpace(`input = "api.json"
targets = ["go", "ir"]
methods = "get, delete"
check = true

[runtime]
go = "example.com/api/ud"
`) + "\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	captured, err := captureConfig(t, "-c", configPath, "generate")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.Input != "api.json" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if want := []string{"go", "ir"}; !equalStringSlices(captured.Targets, want) {
		t.Errorf("targets mismatch: got %v", captured.Targets)
	}
	if want := []string{"get", "delete"}; !equalStringSlices(captured.Methods, want) {
		t.Errorf("methods mismatch: got %v", captured.Methods)
	}
	if !captured.Check {
		t.Errorf("expected check true")
	}
	if got := captured.Runtime["go"]; got != "example.com/api/ud" {
		t.Errorf("runtime mismatch: got %q", got)
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "spec.yaml",
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		args []string
		want string
	}{
		"missing input":   {[]string{"generate"}, "--input is required"},
		"unknown target":  {[]string{"generate", "--input", "a.yaml", "--targets", "rust"}, `unsupported target "rust"`},
		"unknown method":  {[]string{"generate", "--input", "a.yaml", "--methods", "fetch"}, `unsupported method "fetch"`},
		"runtime target":  {[]string{"generate", "--input", "a.yaml", "--runtime", "kotlin=x"}, `unknown target "kotlin"`},
		"tag overlap":     {[]string{"generate", "--input", "a.yaml", "--include-tags", "a", "--exclude-tags", "a"}, "overlap: a"},
		"check with dry":  {[]string{"generate", "--input", "a.yaml", "--check", "--dry-run"}, "--check cannot be combined"},
		"check with over": {[]string{"generate", "--input", "a.yaml", "--check", "--force"}, "--check cannot be combined"},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)

			err := root.Execute()
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
