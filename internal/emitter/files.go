// Package emitter holds what every target emitter shares: the analysis of
// combos, unions, parameters and request bodies over the ir model, and the
// planning and writing of generated files.
package emitter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ErrCheckFailed is returned in check mode when generated output differs
// from what is on disk.
var ErrCheckFailed = errors.New("generated output is out of date")

// Options controls how generated files reach the disk.
type Options struct {
	OutDir string // required; target directory
	Force  bool   // overwrite existing files whose content differs
	DryRun bool   // don't write, only plan
	Check  bool   // don't write; fail if any file would change
	// Runtime is the import path of the hand-written helper module that
	// generated code reaches through the ud namespace. Empty selects the
	// target's default.
	Runtime string
	// Package names the generated Go package; other targets ignore it.
	Package string
	Logger  *zap.SugaredLogger
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}

// File is one rendered output.
type File struct {
	RelPath string
	Content []byte
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
	// Changed is false when the file on disk already has this content.
	Changed bool
}

// Result lists the planned files of one target.
type Result struct {
	Target  string
	Planned []PlannedFile
}

// WriteFiles plans files in path order and writes the changed ones
// atomically unless opts asks for a dry run or a check.
func WriteFiles(ctx context.Context, target string, files []File, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, errors.Newf("%s: OutDir is required", target)
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve out dir")
	}
	log := opts.logger()

	sorted := append([]File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RelPath < sorted[j].RelPath })

	res := &Result{Target: target}
	var stale []string
	for _, f := range sorted {
		rel := filepath.ToSlash(f.RelPath)
		existing, readErr := os.ReadFile(filepath.Join(abs, f.RelPath))
		switch {
		case readErr == nil:
		case os.IsNotExist(readErr):
			existing = nil
		default:
			return nil, errors.Wrapf(readErr, "read existing %s", rel)
		}
		changed := readErr != nil || !bytes.Equal(existing, f.Content)
		if changed && readErr == nil && !opts.Force && !opts.DryRun && !opts.Check {
			return nil, errors.WithHint(
				errors.Newf("%s: %s already exists with different content", target, filepath.Join(abs, f.RelPath)),
				"pass --force to overwrite generated files",
			)
		}
		if changed {
			stale = append(stale, rel)
		}
		res.Planned = append(res.Planned, PlannedFile{RelPath: rel, Size: len(f.Content), Mode: 0o644, Changed: changed})
	}

	if opts.Check {
		if len(stale) > 0 {
			return res, errors.Wrapf(ErrCheckFailed, "%s: %s", target, strings.Join(stale, ", "))
		}
		return res, nil
	}
	if opts.DryRun {
		return res, nil
	}

	for _, f := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !contains(stale, filepath.ToSlash(f.RelPath)) {
			continue
		}
		if err := writeAtomic(filepath.Join(abs, f.RelPath), f.Content); err != nil {
			return nil, errors.Wrapf(err, "%s: write %s", target, f.RelPath)
		}
		log.Infow("wrote file", "target", target, "path", filepath.ToSlash(f.RelPath), "bytes", len(f.Content))
	}
	return res, nil
}

func writeAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir")
	}
	tmp := path + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return errors.Wrap(err, "write temp")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "rename")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
