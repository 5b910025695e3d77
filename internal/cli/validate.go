package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blimu-dev/tsclientgen/pkg/openapi"
)

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input>",
		Short: "Load and validate an OpenAPI document",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return newUsageError(fmt.Sprintf("validate: expected exactly one input, got %d\n\n%s", len(args), cmd.UsageString()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateRunner(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func runValidate(ctx context.Context, input string, out io.Writer) error {
	if err := openapi.Validate(ctx, input); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is valid\n", input)
	return nil
}
