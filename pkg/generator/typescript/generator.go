package typescript

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
)

// BaseFile is the shared contract file every run writes next to the clients
const BaseFile = "base.ts"

//go:embed templates/*
var templatesFS embed.FS

// Generator renders TypeScript client classes
type Generator struct {
	funcMap template.FuncMap
}

// New creates a new TypeScript generator
func New() *Generator {
	funcMap := template.FuncMap{
		"tsType": func(x any) string {
			switch v := x.(type) {
			case ir.IRSchema:
				return schemaToTSType(v)
			case *ir.IRSchema:
				if v != nil {
					return schemaToTSType(*v)
				}
				return "unknown"
			default:
				return "unknown"
			}
		},
		"successType":     SuccessType,
		"failureType":     FailureType,
		"methodSignature": MethodSignature,
		"pathTemplate":    buildPathTemplate,
		"headers":         buildHeaders,
		"bodyIdent":       bodyIdent,
		"docComment":      docComment,
		"lineComment":     lineComment,
		"annotationDocs":  annotationDocs,
		"declaration":     declaration,
		"quotePropName":   quoteTSPropertyName,
	}

	// Merge sprig functions
	for k, v := range sprig.TxtFuncMap() {
		if _, taken := funcMap[k]; !taken {
			funcMap[k] = v
		}
	}
	return &Generator{funcMap: funcMap}
}

// Language returns the generator type identifier
func (g *Generator) Language() string {
	return "typescript"
}

// FileName returns <basename>.ts
func (g *Generator) FileName(doc ir.IRDocument) string {
	return doc.Name + ".ts"
}

// RenderClient renders the type declarations and the client class of doc
func (g *Generator) RenderClient(doc ir.IRDocument) ([]byte, error) {
	out, err := g.renderFile("client.ts.gotmpl", map[string]any{"Doc": doc, "Base": strings.TrimSuffix(BaseFile, ".ts")})
	if err != nil {
		return nil, err
	}
	return Format(out), nil
}

// SharedFiles returns base.ts
func (g *Generator) SharedFiles() (map[string][]byte, error) {
	out, err := g.renderFile("base.ts.gotmpl", nil)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{BaseFile: Format(out)}, nil
}

// renderFile renders an embedded template into memory
func (g *Generator) renderFile(templateName string, data map[string]any) ([]byte, error) {
	tmplContent, err := templatesFS.ReadFile("templates/" + templateName)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templateName, err)
	}

	tmpl, err := template.New(templateName).Funcs(g.funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Format normalizes whitespace: trailing spaces are removed, runs of blank
// lines collapse to one, blank lines directly inside braces are dropped and
// the file ends with exactly one newline.
func Format(src []byte) []byte {
	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" && len(kept) > 0 && strings.HasSuffix(kept[len(kept)-1], "{") {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(l), "}") {
			for len(kept) > 0 && kept[len(kept)-1] == "" {
				kept = kept[:len(kept)-1]
			}
		}
		kept = append(kept, l)
	}
	out := blankRuns.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
	out = strings.Trim(out, "\n")
	return []byte(out + "\n")
}
