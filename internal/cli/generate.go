package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/emitter/dartemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/goemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/irjson"
	"github.com/mark3labs/swagger2client/internal/emitter/pyemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/tsemitter"
	"github.com/mark3labs/swagger2client/internal/ir"
	"github.com/mark3labs/swagger2client/internal/resolve"
	genspec "github.com/mark3labs/swagger2client/internal/spec"
)

const (
	defaultTarget = tsemitter.Target
	defaultOut    = "./generated"
)

type emitFunc func(ctx context.Context, m *ir.Model, opts emitter.Options) (*emitter.Result, error)

// targets maps each --targets value to its emitter.
var targets = map[string]emitFunc{
	tsemitter.Target:   tsemitter.Emit,
	dartemitter.Target: dartemitter.Emit,
	pyemitter.Target:   pyemitter.Emit,
	goemitter.Target:   goemitter.Emit,
	irjson.Target:      irjson.Emit,
}

func targetNames() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Targets     []string
	Out         string
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	// Runtime maps a target name to the import of its hand-written helpers.
	Runtime    map[string]string
	Package    string
	ConfigPath string
	DryRun     bool
	Force      bool
	Check      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Targets: []string{defaultTarget}, Out: defaultOut}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate client code from an OpenAPI/Swagger document",
		Long: "Generate type declarations and request functions from an OpenAPI/Swagger document " +
			"for one or more targets. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2client generate --input spec.yaml --targets ts,go --out ./client
  swagger2client --config swagger2client.yaml generate --check`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringSlice("targets", nil, "Targets to emit ("+strings.Join(targetNames(), "|")+"); defaults to "+defaultTarget)
	flags.String("out", "", "Output directory; defaults to "+defaultOut)
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.StringSlice("paths", nil, "Only include paths matching these regular expressions")
	flags.StringToString("runtime", nil, "Runtime helper import per target, e.g. ts=./ud,go=example.com/api/ud")
	flags.String("package", "", "Package name of the generated Go file")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing generated files")
	flags.Bool("check", false, "Fail when generated output differs from the files on disk")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	str := func(name string, dst *string) error {
		if !flags.Changed(name) {
			return nil
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
		return nil
	}
	list := func(name string, dst *[]string) error {
		if !flags.Changed(name) {
			return nil
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
		return nil
	}
	boolean := func(name string, dst *bool) error {
		if !flags.Changed(name) {
			return nil
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
		return nil
	}

	for _, err := range []error{
		str("input", &cfg.Input),
		str("out", &cfg.Out),
		str("package", &cfg.Package),
		list("targets", &cfg.Targets),
		list("include-tags", &cfg.IncludeTags),
		list("exclude-tags", &cfg.ExcludeTags),
		list("methods", &cfg.Methods),
		list("paths", &cfg.Paths),
		boolean("dry-run", &cfg.DryRun),
		boolean("force", &cfg.Force),
		boolean("check", &cfg.Check),
		boolean("verbose", &cfg.Verbose),
	} {
		if err != nil {
			return err
		}
	}

	if flags.Changed("runtime") {
		value, err := flags.GetStringToString("runtime")
		if err != nil {
			return err
		}
		if cfg.Runtime == nil {
			cfg.Runtime = map[string]string{}
		}
		for k, v := range value {
			cfg.Runtime[k] = v
		}
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = defaultOut
	}
	c.Package = strings.TrimSpace(c.Package)
	for i, t := range c.Targets {
		c.Targets[i] = strings.ToLower(strings.TrimSpace(t))
	}
	c.Targets = sanitizeList(c.Targets)
	if len(c.Targets) == 0 {
		c.Targets = []string{defaultTarget}
	}
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToLower(strings.TrimSpace(m))
	}
	c.Methods = sanitizeList(c.Methods)
	c.Paths = sanitizeList(c.Paths)
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	if len(c.Runtime) > 0 {
		rt := make(map[string]string, len(c.Runtime))
		for k, v := range c.Runtime {
			rt[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		c.Runtime = rt
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	allowed := strings.Join(targetNames(), ", ")
	for _, t := range c.Targets {
		if _, ok := targets[t]; !ok {
			return newUsageError(fmt.Sprintf("generate: unsupported target %q (allowed: %s)", t, allowed))
		}
	}
	for t := range c.Runtime {
		if _, ok := targets[t]; !ok {
			return newUsageError(fmt.Sprintf("generate: runtime given for unknown target %q (allowed: %s)", t, allowed))
		}
	}
	for _, m := range c.Methods {
		if !knownMethod(m) {
			return newUsageError(fmt.Sprintf("generate: unsupported method %q", m))
		}
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	if c.Check && (c.DryRun || c.Force) {
		return newUsageError("generate: --check cannot be combined with --dry-run or --force")
	}

	return nil
}

func knownMethod(m string) bool {
	for _, known := range genspec.Methods {
		if string(known) == m {
			return true
		}
	}
	return false
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = log.Sync() }()
	return generate(ctx, cfg, log, os.Stdout)
}

func generate(ctx context.Context, cfg *GenerateConfig, log *zap.SugaredLogger, stdout io.Writer) error {
	// 1) Load the document (file or http/https URL), converting Swagger 2.0 when needed
	doc, err := genspec.Load(ctx, cfg.Input, genspec.WithLogger(log))
	if err != nil {
		return specUsageError(err)
	}

	// 2) Narrow the operations before anything is resolved
	methods := make([]genspec.HttpMethod, len(cfg.Methods))
	for i, m := range cfg.Methods {
		methods[i] = genspec.HttpMethod(m)
	}
	doc, err = genspec.Filter(doc,
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
		genspec.WithMethods(methods),
		genspec.WithPathPatterns(cfg.Paths),
	)
	if err != nil {
		return specUsageError(err)
	}

	// 3) Resolve schemas and routes into the ir model
	model, err := resolve.Build(doc, resolve.WithLogger(log))
	if err != nil {
		return errors.Wrap(err, "resolve")
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	// 4) Emit every requested target into the output directory
	var stale []error
	for _, name := range cfg.Targets {
		opts := emitter.Options{
			OutDir:  cfg.Out,
			Force:   cfg.Force,
			DryRun:  cfg.DryRun,
			Check:   cfg.Check,
			Runtime: cfg.Runtime[name],
			Package: cfg.Package,
			Logger:  log.With("target", name),
		}
		res, err := targets[name](ctx, model, opts)
		if errors.Is(err, emitter.ErrCheckFailed) {
			stale = append(stale, err)
			continue
		}
		if err != nil {
			return wrapOutputError(err, absOut)
		}
		if cfg.DryRun {
			printPlan(stdout, absOut, res)
		}
	}
	if len(stale) > 0 {
		msgs := make([]string, len(stale))
		for i, err := range stale {
			msgs[i] = err.Error()
		}
		return errors.WithHint(
			errors.Mark(errors.Newf("%s", strings.Join(msgs, "\n")), emitter.ErrCheckFailed),
			"run generate without --check to update the files",
		)
	}
	if cfg.Check {
		fmt.Fprintf(stdout, "Generated output in %s is up to date.\n", absOut)
	}
	return nil
}

// specUsageError maps structured loader errors into friendly messages.
func specUsageError(err error) error {
	var se *genspec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

func printPlan(w io.Writer, outDir string, res *emitter.Result) {
	fmt.Fprintf(w, "Planned writes to %s for %s (%d files):\n", outDir, res.Target, len(res.Planned))
	for _, p := range res.Planned {
		state := "unchanged"
		if p.Changed {
			state = "write"
		}
		fmt.Fprintf(w, "- %s (%d bytes, %s)\n", p.RelPath, p.Size, state)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	if hints := errors.FlattenHints(err); hints != "" {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: %s", outDir, msg, hints))
	}
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

// decodeConfigFile reads a config file into a generic map. TOML is chosen by
// extension; everything else goes through the YAML decoder, which also
// accepts JSON.
func decodeConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	return raw, nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	raw, err := decodeConfigFile(path)
	if err != nil {
		return err
	}

	// Map iteration order only affects which bad key is reported first.
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		nk := normalizeKey(key)
		fieldErr := func(err error) error {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
		switch nk {
		case "input", "out", "package":
			str, err := valueAsString(value)
			if err != nil {
				return fieldErr(err)
			}
			switch nk {
			case "input":
				cfg.Input = str
			case "out":
				cfg.Out = str
			default:
				cfg.Package = str
			}
		case "targets", "includetags", "excludetags", "methods", "paths":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return fieldErr(err)
			}
			switch nk {
			case "targets":
				cfg.Targets = list
			case "includetags":
				cfg.IncludeTags = sanitizeList(list)
			case "excludetags":
				cfg.ExcludeTags = sanitizeList(list)
			case "methods":
				cfg.Methods = list
			default:
				cfg.Paths = list
			}
		case "runtime":
			m, err := valueAsStringMap(value)
			if err != nil {
				return fieldErr(err)
			}
			cfg.Runtime = m
		case "dryrun", "force", "check", "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return fieldErr(err)
			}
			switch nk {
			case "dryrun":
				cfg.DryRun = val
			case "force":
				cfg.Force = val
			case "check":
				cfg.Check = val
			default:
				cfg.Verbose = val
			}
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsStringMap(v any) (map[string]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]string, len(val))
		for k, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected mapping, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
