package typescript

import (
	"fmt"
	"strings"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
)

// declaration renders one named definition. Plain object shapes become
// interfaces with one documented member per line; everything else is a type
// alias.
func declaration(def ir.IRModelDef) string {
	s := def.Schema
	if s.Kind == ir.IRKindObject && !s.Nullable && len(s.Properties) > 0 {
		return fmt.Sprintf("export interface %s %s", def.Name, interfaceBody(s))
	}
	return fmt.Sprintf("export type %s = %s;", def.Name, schemaToTSType(s))
}

func interfaceBody(s ir.IRSchema) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, f := range s.Properties {
		b.WriteString(docComment(annotationDocs(f.Annotations), 2))
		ft := "unknown"
		if f.Type != nil {
			ft = schemaToTSType(*f.Type)
		}
		opt := ""
		if !f.Required {
			opt = "?"
		}
		readonly := ""
		if f.Annotations.ReadOnly {
			readonly = "readonly "
		}
		fmt.Fprintf(&b, "  %s%s%s: %s;\n", readonly, quoteTSPropertyName(f.Name), opt, ft)
	}
	if s.AdditionalProperties != nil || s.AnyAdditional {
		b.WriteString("  [key: string]: unknown;\n")
	}
	b.WriteString("}")
	return b.String()
}
