package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
	"github.com/getkin/kin-openapi/openapi3"
)

const typeNull = "null"

// schemaRefToIR converts an OpenAPI schema reference to IR schema
func schemaRefToIR(sr *openapi3.SchemaRef) ir.IRSchema {
	if sr == nil {
		return ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	if sr.Ref != "" {
		if name := refName(sr.Ref); name != "" {
			return ir.IRSchema{Kind: ir.IRKindRef, Ref: name}
		}
		return ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	if sr.Value == nil {
		return ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	s := sr.Value
	nullable := s.Nullable || typeIncludes(s, typeNull)

	// Compositions
	if len(s.OneOf) > 0 {
		return ir.IRSchema{Kind: ir.IRKindOneOf, OneOf: convertAll(s.OneOf), Nullable: nullable}
	}
	if len(s.AnyOf) > 0 {
		return ir.IRSchema{Kind: ir.IRKindAnyOf, AnyOf: convertAll(s.AnyOf), Nullable: nullable}
	}
	if len(s.AllOf) > 0 {
		return ir.IRSchema{Kind: ir.IRKindAllOf, AllOf: convertAll(s.AllOf), Nullable: nullable}
	}

	// Enum (non-string values are kept in their JSON spelling)
	if len(s.Enum) > 0 {
		vals := make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			if v == nil {
				nullable = true
				continue
			}
			vals = append(vals, fmt.Sprint(v))
		}
		return ir.IRSchema{Kind: ir.IRKindEnum, EnumValues: vals, EnumBase: inferEnumBaseKind(s), Nullable: nullable}
	}

	switch {
	case typeIncludes(s, openapi3.TypeString):
		return ir.IRSchema{Kind: ir.IRKindString, Nullable: nullable, Format: s.Format}
	case typeIncludes(s, openapi3.TypeInteger):
		return ir.IRSchema{Kind: ir.IRKindInteger, Nullable: nullable, Format: s.Format}
	case typeIncludes(s, openapi3.TypeNumber):
		return ir.IRSchema{Kind: ir.IRKindNumber, Nullable: nullable, Format: s.Format}
	case typeIncludes(s, openapi3.TypeBoolean):
		return ir.IRSchema{Kind: ir.IRKindBoolean, Nullable: nullable}
	case typeIncludes(s, openapi3.TypeArray):
		item := schemaRefToIR(s.Items)
		return ir.IRSchema{Kind: ir.IRKindArray, Items: &item, Nullable: nullable}
	case typeIncludes(s, openapi3.TypeObject), s.Type == nil && (len(s.Properties) > 0 || s.AdditionalProperties.Has != nil || s.AdditionalProperties.Schema != nil):
		return objectToIR(s, nullable)
	case typeIncludes(s, typeNull):
		return ir.IRSchema{Kind: ir.IRKindNull}
	}
	return ir.IRSchema{Kind: ir.IRKindUnknown, Nullable: nullable}
}

func objectToIR(s *openapi3.Schema, nullable bool) ir.IRSchema {
	// deterministic order
	names := make([]string, 0, len(s.Properties))
	for n := range s.Properties {
		names = append(names, n)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	fields := make([]ir.IRField, 0, len(names))
	for _, n := range names {
		pr := s.Properties[n]
		fieldType := schemaRefToIR(pr)
		fields = append(fields, ir.IRField{Name: n, Type: &fieldType, Required: required[n], Annotations: extractAnnotations(pr)})
	}

	out := ir.IRSchema{Kind: ir.IRKindObject, Properties: fields, Nullable: nullable}
	if s.AdditionalProperties.Schema != nil {
		ap := schemaRefToIR(s.AdditionalProperties.Schema)
		out.AdditionalProperties = &ap
	} else if s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has {
		out.AnyAdditional = true
	}
	return out
}

func convertAll(refs openapi3.SchemaRefs) []*ir.IRSchema {
	subs := make([]*ir.IRSchema, 0, len(refs))
	for _, sub := range refs {
		sc := schemaRefToIR(sub)
		subs = append(subs, &sc)
	}
	return subs
}

func typeIncludes(s *openapi3.Schema, typ string) bool {
	if s.Type == nil {
		return false
	}
	for _, t := range s.Type.Slice() {
		if t == typ {
			return true
		}
	}
	return false
}

// refName returns the last segment of a $ref, which for local component
// references is the component name.
func refName(ref string) string {
	if strings.HasPrefix(ref, "#/components/schemas/") {
		return strings.TrimPrefix(ref, "#/components/schemas/")
	}
	if strings.HasPrefix(ref, "#/definitions/") {
		return strings.TrimPrefix(ref, "#/definitions/")
	}
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

// extractAnnotations extracts annotations from a schema reference
func extractAnnotations(sr *openapi3.SchemaRef) ir.IRAnnotations {
	var a ir.IRAnnotations
	if sr == nil || sr.Value == nil {
		return a
	}
	s := sr.Value
	a.Description = s.Description
	a.Deprecated = s.Deprecated
	a.ReadOnly = s.ReadOnly
	a.WriteOnly = s.WriteOnly
	a.Default = s.Default
	return a
}

// inferEnumBaseKind infers the base kind for an enum
func inferEnumBaseKind(s *openapi3.Schema) ir.IRSchemaKind {
	// Prefer explicit type when present
	switch {
	case typeIncludes(s, openapi3.TypeString):
		return ir.IRKindString
	case typeIncludes(s, openapi3.TypeInteger):
		return ir.IRKindInteger
	case typeIncludes(s, openapi3.TypeNumber):
		return ir.IRKindNumber
	case typeIncludes(s, openapi3.TypeBoolean):
		return ir.IRKindBoolean
	}
	// Fallback: inspect first non-null enum value
	for _, v := range s.Enum {
		switch v.(type) {
		case string:
			return ir.IRKindString
		case int, int32, int64:
			return ir.IRKindInteger
		case float32, float64:
			return ir.IRKindNumber
		case bool:
			return ir.IRKindBoolean
		}
	}
	return ir.IRKindUnknown
}
