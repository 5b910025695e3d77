package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blimu-dev/tsclientgen/internal/logging"
	"github.com/blimu-dev/tsclientgen/pkg/config"
	"github.com/blimu-dev/tsclientgen/pkg/generator"
)

// GenerateConfig is the resolved input of the generate command.
type GenerateConfig struct {
	config.Config
	// ConfigPath is the file the values were read from, if any
	ConfigPath string
	Out        io.Writer
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [inputs...]",
		Short: "Generate TypeScript clients",
		Long:  "Generate one <basename>.ts client per input document and a shared base.ts in the output directory. Inputs are file paths or http(s) URLs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd.Flags(), args)
			if err != nil {
				return err
			}
			cfg.Out = cmd.OutOrStdout()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (default \".\")")
	cmd.Flags().StringArray("formatter", nil, "Formatter command run in the output directory, one argument per flag")
	cmd.Flags().StringSlice("include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringSlice("exclude-tags", nil, "Regex patterns for tags to exclude")
	cmd.Flags().StringToString("class-name", nil, "Class name per input basename (basename=ClassName)")
	cmd.Flags().Bool("dry-run", false, "Print the files that would be written without writing them")

	return cmd
}

// resolveGenerateConfig layers defaults, the config file and flags, in
// increasing precedence.
func resolveGenerateConfig(fs *pflag.FlagSet, args []string) (*GenerateConfig, error) {
	cfg := &GenerateConfig{Config: config.Default()}

	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("config: %v", err))
		}
		cfg.Config = *loaded
		cfg.ConfigPath = path
	}

	if len(args) > 0 {
		cfg.Inputs = args
	}
	if fs.Changed("output") {
		cfg.Output, _ = fs.GetString("output")
	}
	if fs.Changed("formatter") {
		cfg.Formatter, _ = fs.GetStringArray("formatter")
	}
	if fs.Changed("include-tags") {
		cfg.IncludeTags, _ = fs.GetStringSlice("include-tags")
	}
	if fs.Changed("exclude-tags") {
		cfg.ExcludeTags, _ = fs.GetStringSlice("exclude-tags")
	}
	if fs.Changed("class-name") {
		names, _ := fs.GetStringToString("class-name")
		if cfg.ClassNames == nil {
			cfg.ClassNames = map[string]string{}
		}
		for k, v := range names {
			cfg.ClassNames[k] = v
		}
	}
	if fs.Changed("dry-run") {
		cfg.DryRun, _ = fs.GetBool("dry-run")
	}
	if fs.Changed("log-level") {
		cfg.LogLevel, _ = fs.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, newUsageError(err.Error())
	}
	return cfg, nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	if cfg.ConfigPath != "" {
		if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
			return newUsageError(err.Error())
		}
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	plan, err := generator.NewService().Generate(ctx, generator.Options{
		Inputs:      cfg.Inputs,
		Output:      cfg.Output,
		ClassNames:  cfg.ClassNames,
		Formatter:   cfg.Formatter,
		IncludeTags: cfg.IncludeTags,
		ExcludeTags: cfg.ExcludeTags,
		DryRun:      cfg.DryRun,
	})
	if err != nil {
		return err
	}

	verb := "wrote"
	if cfg.DryRun {
		verb = "would write"
	}
	for _, f := range plan {
		fmt.Fprintf(out, "%s %s (%d bytes)\n", verb, f.Path, f.Bytes)
	}
	return nil
}
