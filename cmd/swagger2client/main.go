package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/swagger2client/internal/cli"
	"github.com/mark3labs/swagger2client/internal/emitter"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		switch {
		case errors.Is(err, cli.ErrUsage):
			os.Exit(2)
		case errors.Is(err, emitter.ErrCheckFailed):
			os.Exit(3)
		}
		os.Exit(1)
	}
}
