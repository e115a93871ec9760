package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the swagger2client CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swagger2client",
		Short: "Generate typed API clients from OpenAPI/Swagger documents",
		Long: "swagger2client resolves the schemas and operations of an OpenAPI/Swagger document " +
			"and emits type declarations plus request functions for TypeScript, Dart, Python and Go.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Flag errors (like unknown flags) become usage errors carrying the help text.
	flagErr := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErr)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML, JSON or TOML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	g := newGenerateCmd()
	g.SetFlagErrorFunc(flagErr)
	cmd.AddCommand(g)

	i := newInitCmd()
	i.SetFlagErrorFunc(flagErr)
	cmd.AddCommand(i)

	return cmd
}
