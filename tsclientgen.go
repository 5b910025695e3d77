// Package tsclientgen generates typed TypeScript API clients from OpenAPI
// documents.
//
// Each input document becomes one client class in <output>/<basename>.ts,
// with one method per operation that has an operationId. Every method
// builds a Request and delegates to a Requester, resolving to a Result that
// is either ok or error. The contract itself is written once to
// <output>/base.ts.
//
// Quick Start:
//
//	import "github.com/blimu-dev/tsclientgen"
//
//	err := tsclientgen.Generate(ctx, "./src/clients", "./schemas/cloud-api.yaml")
//
// For more control, see the generator package.
package tsclientgen

import (
	"context"

	"github.com/blimu-dev/tsclientgen/pkg/config"
	"github.com/blimu-dev/tsclientgen/pkg/generator"
	"github.com/blimu-dev/tsclientgen/pkg/openapi"
)

// Generate writes one client per input plus base.ts into output.
//
// Example:
//
//	err := tsclientgen.Generate(ctx, "./gen", "cloud-api.yaml", "https://engine.local/openapi.json")
func Generate(ctx context.Context, output string, inputs ...string) error {
	_, err := generator.NewService().Generate(ctx, generator.Options{Inputs: inputs, Output: output})
	return err
}

// GenerateFromConfig runs generation as described by a YAML, TOML or JSON
// configuration file.
//
// Example:
//
//	err := tsclientgen.GenerateFromConfig(ctx, "tsclientgen.yaml")
func GenerateFromConfig(ctx context.Context, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	_, err = generator.NewService().Generate(ctx, generator.Options{
		Inputs:      cfg.Inputs,
		Output:      cfg.Output,
		ClassNames:  cfg.ClassNames,
		Formatter:   cfg.Formatter,
		IncludeTags: cfg.IncludeTags,
		ExcludeTags: cfg.ExcludeTags,
		DryRun:      cfg.DryRun,
	})
	return err
}

// ValidateSchema loads an OpenAPI document from a file or URL and runs the
// OpenAPI validator on it.
func ValidateSchema(ctx context.Context, input string) error {
	return openapi.Validate(ctx, input)
}
