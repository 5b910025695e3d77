package generator

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
	"github.com/getkin/kin-openapi/openapi3"
)

// Definitions is an independent copy of a document's components.schemas.
type Definitions openapi3.Schemas

// Normalize copies components.schemas into Definitions and clears every
// title in the copy, so that titles never compete with definition names
// when type declarations are emitted. doc itself is left untouched.
func Normalize(doc *openapi3.T) (Definitions, error) {
	defs := Definitions{}
	if doc == nil || doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return defs, nil
	}
	// A JSON round trip detaches the copy from the loader's shared
	// pointers; resolved references come back as bare $ref nodes.
	data, err := json.Marshal(doc.Components.Schemas)
	if err != nil {
		return nil, fmt.Errorf("copying component schemas: %w", err)
	}
	var copied openapi3.Schemas
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("copying component schemas: %w", err)
	}
	for name, sr := range copied {
		stripTitles(sr)
		defs[name] = sr
	}
	return defs, nil
}

// Names returns the definition names in sorted order.
func (d Definitions) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stripTitles(sr *openapi3.SchemaRef) {
	if sr == nil || sr.Ref != "" || sr.Value == nil {
		return
	}
	s := sr.Value
	s.Title = ""
	for _, p := range s.Properties {
		stripTitles(p)
	}
	stripTitles(s.Items)
	stripTitles(s.AdditionalProperties.Schema)
	stripTitles(s.Not)
	for _, group := range []openapi3.SchemaRefs{s.OneOf, s.AnyOf, s.AllOf} {
		for _, sub := range group {
			stripTitles(sub)
		}
	}
}

// buildModelDefs converts definitions into IR, sorted by name
func buildModelDefs(defs Definitions) []ir.IRModelDef {
	out := make([]ir.IRModelDef, 0, len(defs))
	for _, name := range defs.Names() {
		sr := defs[name]
		out = append(out, ir.IRModelDef{
			Name:        name,
			Schema:      schemaRefToIR(sr),
			Annotations: extractAnnotations(sr),
		})
	}
	return out
}
