package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/blimu-dev/tsclientgen/pkg/generator"
	"github.com/blimu-dev/tsclientgen/pkg/generator/typescript"
	"github.com/blimu-dev/tsclientgen/pkg/ir"
)

var inspectRunner = runInspect

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <input>",
		Short: "List the client methods a document would produce",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return newUsageError(fmt.Sprintf("inspect: expected exactly one input, got %d\n\n%s", len(args), cmd.UsageString()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectRunner(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func runInspect(ctx context.Context, input string, out io.Writer) error {
	doc, err := generator.NewService().Inspect(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: class %s, %d definitions, %d methods\n", input, doc.ClassName, len(doc.Definitions), len(doc.Methods))
	if len(doc.Methods) == 0 {
		return nil
	}
	fmt.Fprintln(out, renderMethodTable(doc.Methods))
	return nil
}

func renderMethodTable(methods []ir.IRMethod) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Method", "Verb", "Path", "Arguments", "Success", "Error"})
	for _, m := range methods {
		tw.AppendRow(table.Row{
			m.Name,
			strings.ToUpper(m.HTTPMethod),
			m.Path,
			strings.Join(typescript.MethodSignature(m), ", "),
			typescript.SuccessType(m),
			typescript.FailureType(m),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
