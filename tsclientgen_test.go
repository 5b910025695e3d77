package tsclientgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/tsclientgen/pkg/generator"
)

const itemsSchema = `openapi: 3.0.3
info:
  title: Items
  version: 1.0.0
paths:
  /items/{id}:
    delete:
      operationId: deleteItem
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "204":
          description: deleted
`

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(input, []byte(itemsSchema), 0o644))

	out := filepath.Join(dir, "gen")
	require.NoError(t, Generate(context.Background(), out, input))

	src, err := os.ReadFile(filepath.Join(out, "items.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "async deleteItem(id: string): Promise<Result<void, Error>>")
	assert.FileExists(t, filepath.Join(out, "base.ts"))
}

func TestGenerateWithoutInputs(t *testing.T) {
	err := Generate(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, generator.ErrNoInputFiles)
}

func TestGenerateFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.yaml"), []byte(itemsSchema), 0o644))
	cfgPath := filepath.Join(dir, "tsclientgen.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"inputs": ["items.yaml"], "output": "gen", "classNames": {"items": "ItemsApi"}}`), 0o644))

	require.NoError(t, GenerateFromConfig(context.Background(), cfgPath))
	src, err := os.ReadFile(filepath.Join(dir, "gen", "items.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "export class ItemsApi {")
}

func TestValidateSchema(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(input, []byte(itemsSchema), 0o644))
	assert.NoError(t, ValidateSchema(context.Background(), input))
	assert.Error(t, ValidateSchema(context.Background(), filepath.Join(dir, "missing.yaml")))
}
