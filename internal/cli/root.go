// Package cli implements the tsclientgen command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blimu-dev/tsclientgen/internal/logging"
)

// Execute runs the tsclientgen CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tsclientgen",
		Short:         "Generate typed TypeScript API clients from OpenAPI documents",
		Long:          "tsclientgen reads OpenAPI 3 (or Swagger 2) documents and writes one TypeScript client class per document plus a shared base.ts with the Request, Requester and Result contract.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			if err := logging.Setup(level, os.Stderr); err != nil {
				return newUsageError(err.Error())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.SetFlagErrorFunc(flagError)
	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML, TOML or JSON)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newValidateCmd(), newInspectCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}
	return cmd
}

// flagError turns cobra flag errors (like unknown flags) into usage errors
// that also show the command's help text.
func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
