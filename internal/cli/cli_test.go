package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/tsclientgen/pkg/generator"
	"github.com/blimu-dev/tsclientgen/pkg/openapi"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func captureGenerate(t *testing.T) **GenerateConfig {
	t.Helper()
	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })
	return &captured
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured := captureGenerate(t)

	_, err := execute(t,
		"generate", "a.yaml", "b.json",
		"--output", "./build",
		"--formatter", "npx", "--formatter", "prettier",
		"--include-tags", "power,play",
		"--exclude-tags", "internal",
		"--class-name", "a=CloudApi",
		"--dry-run",
	)
	require.NoError(t, err)
	require.NotNil(t, *captured)

	cfg := *captured
	assert.Equal(t, []string{"a.yaml", "b.json"}, cfg.Inputs)
	assert.Equal(t, "./build", cfg.Output)
	assert.Equal(t, []string{"npx", "prettier"}, cfg.Formatter)
	assert.Equal(t, []string{"power", "play"}, cfg.IncludeTags)
	assert.Equal(t, []string{"internal"}, cfg.ExcludeTags)
	assert.Equal(t, map[string]string{"a": "CloudApi"}, cfg.ClassNames)
	assert.True(t, cfg.DryRun)
}

func TestGenerateFlagsOverrideConfigFile(t *testing.T) {
	captured := captureGenerate(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "tsclientgen.toml")
	require.NoError(t, os.WriteFile(path, []byte(`inputs = ["schemas/cloud-api.yaml"]
output = "gen"
dryRun = true
excludeTags = ["internal"]

[classNames]
cloud-api = "Cloud"
`), 0o644))

	_, err := execute(t, "--config", path, "generate", "--output", "other", "--class-name", "engine=Engine")
	require.NoError(t, err)

	cfg := *captured
	assert.Equal(t, []string{filepath.Join(dir, "schemas", "cloud-api.yaml")}, cfg.Inputs)
	assert.Equal(t, "other", cfg.Output)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, []string{"internal"}, cfg.ExcludeTags)
	assert.Equal(t, map[string]string{"cloud-api": "Cloud", "engine": "Engine"}, cfg.ClassNames)
	assert.Equal(t, path, cfg.ConfigPath)

	_, err = execute(t, "--config", path, "generate", "override.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"override.yaml"}, (*captured).Inputs, "positional inputs replace config inputs")
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	captureGenerate(t)

	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "generate")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = execute(t, "generate", "a.yaml", "--include-tags", "(")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestGenerateWithoutInputs(t *testing.T) {
	out := t.TempDir()
	_, err := execute(t, "generate", "--output", out)
	require.ErrorIs(t, err, generator.ErrNoInputFiles)
	assert.False(t, errors.Is(err, ErrUsage))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "clients")
	stdout, err := execute(t, "generate", filepath.Join("testdata", "items.yaml"), "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+filepath.Join(dir, "items.ts"))
	assert.Contains(t, stdout, "wrote "+filepath.Join(dir, "base.ts"))

	src, err := os.ReadFile(filepath.Join(dir, "items.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "async getItem(id: string): Promise<Result<Item, Error>>")
}

func TestGenerateDryRunPrintsPlan(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "clients")
	stdout, err := execute(t, "generate", filepath.Join("testdata", "items.yaml"), "--output", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "would write "+filepath.Join(dir, "items.ts"))
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	_, err := execute(t, "generate", "--no-such-flag")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "Usage:")
}

func TestInvalidLogLevelIsUsageError(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "validate", filepath.Join("testdata", "items.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestValidate(t *testing.T) {
	stdout, err := execute(t, "validate", filepath.Join("testdata", "items.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")

	_, err = execute(t, "validate", filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	var docErr *openapi.DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, openapi.ValidationError, docErr.Code)

	_, err = execute(t, "validate")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestInspect(t *testing.T) {
	stdout, err := execute(t, "inspect", filepath.Join("testdata", "items.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "class Items, 1 definitions, 1 methods")
	assert.Contains(t, stdout, "getItem")
	assert.Contains(t, stdout, "GET")
	assert.Contains(t, stdout, "/items/{id}")
	assert.Contains(t, stdout, "id: string")
}

func TestInitWritesSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tsclientgen.yaml")
	stdout, err := execute(t, "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote sample config to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tsclientgen configuration")

	_, err = execute(t, "init", "--path", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = execute(t, "init", "--path", path, "--force")
	require.NoError(t, err)
}
