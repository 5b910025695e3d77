package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
)

func str() ir.IRSchema { return ir.IRSchema{Kind: ir.IRKindString} }

func ref(name string) *ir.IRSchema { return &ir.IRSchema{Kind: ir.IRKindRef, Ref: name} }

func getItemDoc() ir.IRDocument {
	return ir.IRDocument{
		Source:    "/specs/items.yaml",
		Name:      "items",
		ClassName: "Items",
		Definitions: []ir.IRModelDef{{
			Name: "Item",
			Schema: ir.IRSchema{Kind: ir.IRKindObject, Properties: []ir.IRField{
				{Name: "id", Type: &ir.IRSchema{Kind: ir.IRKindString}, Required: true},
			}},
		}},
		Methods: []ir.IRMethod{{
			Name:       "getItem",
			HTTPMethod: "get",
			Path:       "/items/{id}",
			PathParts:  []ir.IRPathPart{{Literal: "/items/"}, {Param: "id"}},
			Params:     []ir.IRMethodParam{{Ident: "id", WireName: "id", In: ir.IRParamPath, Required: true, Schema: str()}},
			Success:    ref("Item"),
		}},
	}
}

func TestRenderClientGetItem(t *testing.T) {
	out, err := New().RenderClient(getItemDoc())
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, "// Code generated by tsclientgen from items.yaml. DO NOT EDIT.")
	assert.Contains(t, src, `import type { Requester, Result } from "./base";`)
	assert.Contains(t, src, "export interface Item {\n  id: string;\n}")
	assert.Contains(t, src, "export class Items {\n  constructor(private readonly requester: Requester) {}")
	assert.Contains(t, src, "async getItem(id: string): Promise<Result<Item, Error>> {")
	assert.Contains(t, src, "path: `/items/${id}`,")
	assert.Contains(t, src, `method: "get",`)
	assert.Contains(t, src, "headers: {},")
	assert.NotContains(t, src, "body:")
}

func TestRenderClientMultiLineTitle(t *testing.T) {
	doc := getItemDoc()
	doc.Title = "Cloud API\r\nv2 beta\n\nInternal"
	out, err := New().RenderClient(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "DO NOT EDIT.\n// Cloud API\n// v2 beta\n//\n// Internal\n\nimport type")
}

func TestRenderClientQuotesNonIdentifierMethodNames(t *testing.T) {
	doc := getItemDoc()
	doc.Methods[0].Name = "get-item"
	out, err := New().RenderClient(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `  async "get-item"(id: string): Promise<Result<Item, Error>> {`)
}

func TestLineComment(t *testing.T) {
	assert.Equal(t, "// one", lineComment("one"))
	assert.Equal(t, "// a\n//\n// b", lineComment("a\n\nb\n"))
}

func TestRenderClientIsDeterministic(t *testing.T) {
	g := New()
	a, err := g.RenderClient(getItemDoc())
	require.NoError(t, err)
	b, err := g.RenderClient(getItemDoc())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRenderClientHeadersAndBody(t *testing.T) {
	doc := ir.IRDocument{
		Name:      "instances",
		ClassName: "Instances",
		Methods: []ir.IRMethod{{
			Name:       "updateInstance",
			HTTPMethod: "put",
			Path:       "/instances/{instanceId}",
			PathParts:  []ir.IRPathPart{{Literal: "/instances/"}, {Param: "instanceId"}},
			Params: []ir.IRMethodParam{
				{Ident: "instanceId", WireName: "instanceId", In: ir.IRParamPath, Required: true, Schema: str()},
				{Ident: "xRequestId", WireName: "X-Request-Id", In: ir.IRParamHeader, Required: true, Schema: str()},
				{Ident: "xRetry", WireName: "X-Retry", In: ir.IRParamHeader, Schema: ir.IRSchema{Kind: ir.IRKindInteger}},
				{Ident: "body", WireName: "body", In: ir.IRParamBody, Required: true, Schema: *ref("InstanceUpdate")},
			},
			Error: ref("ApiError"),
			Docs:  []string{"Replaces an instance.", "@param body the new state"},
		}},
	}
	out, err := New().RenderClient(doc)
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, "async updateInstance(instanceId: string, xRequestId: string, xRetry: number | undefined, body: InstanceUpdate): Promise<Result<void, ApiError>> {")
	assert.Contains(t, src, `headers: { "X-Request-Id": xRequestId, ...(xRetry !== undefined ? { "X-Retry": String(xRetry) } : {}) },`)
	assert.Contains(t, src, "body: body,")
	assert.Contains(t, src, `method: "put",`)
	assert.Contains(t, src, "  /**\n   * Replaces an instance.\n   * @param body the new state\n   */\n  async updateInstance(")
}

func TestMethodSignatureOptionalTrailing(t *testing.T) {
	m := ir.IRMethod{Params: []ir.IRMethodParam{
		{Ident: "id", In: ir.IRParamPath, Required: true, Schema: str()},
		{Ident: "xTrace", In: ir.IRParamHeader, Schema: str()},
		{Ident: "body", In: ir.IRParamBody, Schema: *ref("Patch")},
	}}
	assert.Equal(t, []string{"id: string", "xTrace?: string", "body?: Patch"}, MethodSignature(m))
}

func TestSchemaToTSType(t *testing.T) {
	tests := []struct {
		name     string
		schema   ir.IRSchema
		expected string
	}{
		{"string", str(), "string"},
		{"binary", ir.IRSchema{Kind: ir.IRKindString, Format: "binary"}, "Blob"},
		{"integer", ir.IRSchema{Kind: ir.IRKindInteger}, "number"},
		{"nullable ref", ir.IRSchema{Kind: ir.IRKindRef, Ref: "Item", Nullable: true}, "Item | null"},
		{"array", ir.IRSchema{Kind: ir.IRKindArray, Items: ref("Item")}, "Array<Item>"},
		{"string enum", ir.IRSchema{Kind: ir.IRKindEnum, EnumBase: ir.IRKindString, EnumValues: []string{"on", "off"}}, `"on" | "off"`},
		{"number enum", ir.IRSchema{Kind: ir.IRKindEnum, EnumBase: ir.IRKindInteger, EnumValues: []string{"1", "2"}}, "1 | 2"},
		{"oneOf", ir.IRSchema{Kind: ir.IRKindOneOf, OneOf: []*ir.IRSchema{ref("A"), ref("B")}}, "A | B"},
		{"allOf with union", ir.IRSchema{Kind: ir.IRKindAllOf, AllOf: []*ir.IRSchema{ref("A"), {Kind: ir.IRKindRef, Ref: "B", Nullable: true}}}, "A & (B | null)"},
		{"map", ir.IRSchema{Kind: ir.IRKindObject, AdditionalProperties: &ir.IRSchema{Kind: ir.IRKindNumber}}, "Record<string, number>"},
		{"empty object", ir.IRSchema{Kind: ir.IRKindObject}, "Record<string, unknown>"},
		{"inline object", ir.IRSchema{Kind: ir.IRKindObject, Properties: []ir.IRField{
			{Name: "play-id", Type: &ir.IRSchema{Kind: ir.IRKindInteger}, Required: true},
			{Name: "note", Type: &ir.IRSchema{Kind: ir.IRKindString}},
		}}, `{ "play-id": number; note?: string }`},
		{"unknown", ir.IRSchema{Kind: ir.IRKindUnknown}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schemaToTSType(tt.schema))
		})
	}
}

func TestDeclaration(t *testing.T) {
	iface := declaration(ir.IRModelDef{
		Name: "Report",
		Schema: ir.IRSchema{Kind: ir.IRKindObject, Properties: []ir.IRField{
			{Name: "id", Type: &ir.IRSchema{Kind: ir.IRKindString}, Required: true, Annotations: ir.IRAnnotations{ReadOnly: true}},
			{Name: "note", Type: &ir.IRSchema{Kind: ir.IRKindString}, Annotations: ir.IRAnnotations{Description: "Free text"}},
		}},
	})
	assert.Equal(t, "export interface Report {\n  /**\n   * @readonly\n   */\n  readonly id: string;\n  /**\n   * Free text\n   */\n  note?: string;\n}", iface)

	alias := declaration(ir.IRModelDef{
		Name:   "PowerState",
		Schema: ir.IRSchema{Kind: ir.IRKindEnum, EnumBase: ir.IRKindString, EnumValues: []string{"on", "off"}},
	})
	assert.Equal(t, `export type PowerState = "on" | "off";`, alias)
}

func TestQuoteTSPropertyName(t *testing.T) {
	assert.Equal(t, "instanceId", quoteTSPropertyName("instanceId"))
	assert.Equal(t, `"content-type"`, quoteTSPropertyName("content-type"))
	assert.Equal(t, `"2xx"`, quoteTSPropertyName("2xx"))
}

func TestPathTemplateEscapesLiterals(t *testing.T) {
	m := ir.IRMethod{PathParts: []ir.IRPathPart{{Literal: "/a`b/"}, {Param: "id"}, {Literal: "/${x}"}}}
	assert.Equal(t, "`/a\\`b/${id}/\\${x}`", buildPathTemplate(m))
}

func TestSharedFiles(t *testing.T) {
	files, err := New().SharedFiles()
	require.NoError(t, err)
	require.Contains(t, files, BaseFile)
	src := string(files[BaseFile])
	for _, want := range []string{
		`export type Method = "get" | "post" | "delete" | "patch" | "put";`,
		"export type Request<B = unknown> =",
		"export type Result<T, E> =",
		"export interface Requester {",
		"export function ok<T, E>(",
		"export function err<T, E>(",
		"export class FetchRequester implements Requester {",
		`headers["content-type"] = "application/json";`,
		"return status >= 200 && status < 300;",
	} {
		assert.Contains(t, src, want)
	}
}

func TestFormat(t *testing.T) {
	in := "a {  \n\n  b;\t\n\n\n\n  c;\n\n}\n\n\n"
	assert.Equal(t, "a {\n  b;\n\n  c;\n}\n", string(Format([]byte(in))))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "cloud-api.ts", New().FileName(ir.IRDocument{Name: "cloud-api"}))
}
