package typescript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
	"github.com/blimu-dev/tsclientgen/pkg/utils"
)

const (
	// voidType is the success payload when the 200 response has no JSON schema
	voidType = "void"
	// errorType is the failure payload when no 4xx/5xx response has a JSON schema
	errorType = "Error"
)

// schemaToTSType converts an IR schema to TypeScript type string
func schemaToTSType(s ir.IRSchema) string {
	// Base type string without nullability; append null later
	var t string
	switch s.Kind {
	case ir.IRKindString:
		if s.Format == "binary" {
			t = "Blob"
		} else {
			t = "string"
		}
	case ir.IRKindNumber, ir.IRKindInteger:
		t = "number"
	case ir.IRKindBoolean:
		t = "boolean"
	case ir.IRKindNull:
		t = "null"
	case ir.IRKindRef:
		if s.Ref != "" {
			t = s.Ref
		} else {
			t = "unknown"
		}
	case ir.IRKindArray:
		if s.Items != nil {
			t = "Array<" + schemaToTSType(*s.Items) + ">"
		} else {
			t = "Array<unknown>"
		}
	case ir.IRKindOneOf:
		t = joinTypes(s.OneOf, " | ")
	case ir.IRKindAnyOf:
		t = joinTypes(s.AnyOf, " | ")
	case ir.IRKindAllOf:
		t = joinTypes(s.AllOf, " & ")
	case ir.IRKindEnum:
		t = enumUnion(s)
	case ir.IRKindObject:
		t = objectShape(s)
	default:
		t = "unknown"
	}
	if s.Nullable && t != "null" {
		t += " | null"
	}
	return t
}

func joinTypes(subs []*ir.IRSchema, sep string) string {
	if len(subs) == 0 {
		return "unknown"
	}
	parts := make([]string, 0, len(subs))
	for _, sub := range subs {
		p := schemaToTSType(*sub)
		// unions inside an intersection need parentheses
		if sep == " & " && strings.Contains(p, " | ") {
			p = "(" + p + ")"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, sep)
}

func enumUnion(s ir.IRSchema) string {
	if len(s.EnumValues) == 0 {
		if s.Nullable {
			return "null"
		}
		return "never"
	}
	vals := make([]string, 0, len(s.EnumValues))
	for _, v := range s.EnumValues {
		switch s.EnumBase {
		case ir.IRKindNumber, ir.IRKindInteger:
			vals = append(vals, v)
		case ir.IRKindBoolean:
			if v == "true" || v == "false" {
				vals = append(vals, v)
			} else {
				vals = append(vals, strconv.Quote(v))
			}
		default:
			vals = append(vals, strconv.Quote(v))
		}
	}
	return strings.Join(vals, " | ")
}

// objectShape renders an object schema as a one-line type literal
func objectShape(s ir.IRSchema) string {
	if len(s.Properties) == 0 {
		if s.AdditionalProperties != nil {
			return "Record<string, " + schemaToTSType(*s.AdditionalProperties) + ">"
		}
		return "Record<string, unknown>"
	}
	members := make([]string, 0, len(s.Properties)+1)
	for _, f := range s.Properties {
		ft := "unknown"
		if f.Type != nil {
			ft = schemaToTSType(*f.Type)
		}
		opt := ""
		if !f.Required {
			opt = "?"
		}
		members = append(members, fmt.Sprintf("%s%s: %s", quoteTSPropertyName(f.Name), opt, ft))
	}
	if s.AdditionalProperties != nil || s.AnyAdditional {
		members = append(members, "[key: string]: unknown")
	}
	return "{ " + strings.Join(members, "; ") + " }"
}

// SuccessType is the TypeScript payload type of a method's ok variant
func SuccessType(m ir.IRMethod) string {
	if m.Success == nil {
		return voidType
	}
	return schemaToTSType(*m.Success)
}

// FailureType is the TypeScript payload type of a method's error variant
func FailureType(m ir.IRMethod) string {
	if m.Error == nil {
		return errorType
	}
	return schemaToTSType(*m.Error)
}

// MethodSignature returns the TS parameter list of m. An optional argument
// followed by a required one is spelled `T | undefined` since TypeScript
// allows `?` only on trailing parameters.
func MethodSignature(m ir.IRMethod) []string {
	parts := make([]string, 0, len(m.Params))
	for i, p := range m.Params {
		t := schemaToTSType(p.Schema)
		switch {
		case p.Required:
			parts = append(parts, fmt.Sprintf("%s: %s", p.Ident, t))
		case requiredAfter(m.Params[i+1:]):
			parts = append(parts, fmt.Sprintf("%s: %s | undefined", p.Ident, t))
		default:
			parts = append(parts, fmt.Sprintf("%s?: %s", p.Ident, t))
		}
	}
	return parts
}

func requiredAfter(params []ir.IRMethodParam) bool {
	for _, p := range params {
		if p.Required {
			return true
		}
	}
	return false
}

// buildPathTemplate converts /items/{id} to the template literal `/items/${id}`
func buildPathTemplate(m ir.IRMethod) string {
	var b strings.Builder
	b.WriteString("`")
	for _, part := range m.PathParts {
		if part.Param != "" {
			b.WriteString("${")
			b.WriteString(part.Param)
			b.WriteString("}")
			continue
		}
		b.WriteString(escapeTemplateLiteral(part.Literal))
	}
	b.WriteString("`")
	return b.String()
}

func escapeTemplateLiteral(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${")
	return r.Replace(s)
}

// buildHeaders renders the request's header object. Only declared header
// parameters appear; optional ones are spread in when defined.
func buildHeaders(m ir.IRMethod) string {
	headers := m.HeaderParams()
	if len(headers) == 0 {
		return "{}"
	}
	entries := make([]string, 0, len(headers))
	for _, h := range headers {
		key := strconv.Quote(h.WireName)
		value := h.Ident
		if !isStringSchema(h.Schema) {
			value = "String(" + h.Ident + ")"
		}
		if h.Required {
			entries = append(entries, fmt.Sprintf("%s: %s", key, value))
			continue
		}
		entries = append(entries, fmt.Sprintf("...(%s !== undefined ? { %s: %s } : {})", h.Ident, key, value))
	}
	return "{ " + strings.Join(entries, ", ") + " }"
}

func isStringSchema(s ir.IRSchema) bool {
	if s.Nullable {
		return false
	}
	switch s.Kind {
	case ir.IRKindString:
		return s.Format != "binary"
	case ir.IRKindEnum:
		return s.EnumBase == ir.IRKindString
	}
	return false
}

// bodyIdent returns the argument carrying the request body
func bodyIdent(m ir.IRMethod) string {
	for _, p := range m.Params {
		if p.In == ir.IRParamBody {
			return p.Ident
		}
	}
	return ""
}

// docComment renders lines as a JSDoc block indented by indent spaces.
// Nothing is rendered for no lines.
func docComment(lines []string, indent int) string {
	if len(lines) == 0 {
		return ""
	}
	pad := strings.Repeat(" ", indent)
	var b strings.Builder
	b.WriteString(pad + "/**\n")
	for _, l := range lines {
		l = strings.ReplaceAll(l, "*/", "*\\/")
		if l == "" {
			b.WriteString(pad + " *\n")
			continue
		}
		b.WriteString(pad + " * " + l + "\n")
	}
	b.WriteString(pad + " */\n")
	return b.String()
}

// lineComment renders text as consecutive // comment lines.
func lineComment(text string) string {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("// "+l, " \t")
	}
	return strings.Join(lines, "\n")
}

// annotationDocs turns schema annotations into doc comment lines
func annotationDocs(a ir.IRAnnotations) []string {
	var lines []string
	if d := strings.TrimSpace(a.Description); d != "" {
		lines = append(lines, strings.Split(d, "\n")...)
	}
	if a.ReadOnly {
		lines = append(lines, "@readonly")
	}
	if a.Default != nil {
		lines = append(lines, fmt.Sprintf("@default %v", a.Default))
	}
	if a.Deprecated {
		lines = append(lines, "@deprecated")
	}
	return lines
}

// quoteTSPropertyName quotes TypeScript property names that are not plain identifiers
func quoteTSPropertyName(name string) string {
	if utils.IsIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}
