package generator

import (
	"fmt"
	"strings"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
	"github.com/blimu-dev/tsclientgen/pkg/utils"
)

const successStatus = "200"

// BuildMethod turns an operation descriptor into a client method
// definition. It has no side effects and depends on nothing but op.
//
// Arguments are the path and header parameters in declaration order
// followed by the body. The success type comes from the 200 response; the
// error type from the first 4xx or 5xx response, in lexicographic status
// order, that declares a JSON schema. A nil type means the caller should use
// its void or generic error sentinel.
func BuildMethod(op ir.IROperation) ir.IRMethod {
	m := ir.IRMethod{
		Name:       op.OperationID,
		HTTPMethod: op.Method,
		Path:       op.Path,
		Deprecated: op.Deprecated,
	}

	used := map[string]bool{}
	identFor := func(wire string) string {
		id := utils.SafeIdentifier(wire)
		for base, n := id, 2; used[id]; n++ {
			id = fmt.Sprintf("%s%d", base, n)
		}
		used[id] = true
		return id
	}

	pathIdents := map[string]string{}
	for _, p := range op.Params {
		ident := identFor(p.Name)
		if p.In == ir.IRParamPath {
			pathIdents[p.Name] = ident
		}
		m.Params = append(m.Params, ir.IRMethodParam{
			Ident:       ident,
			WireName:    p.Name,
			In:          p.In,
			Required:    p.Required,
			Schema:      p.Schema,
			Description: p.Description,
		})
	}
	if op.RequestBody != nil {
		m.Params = append(m.Params, ir.IRMethodParam{
			Ident:       identFor("body"),
			WireName:    "body",
			In:          ir.IRParamBody,
			Required:    op.RequestBody.Required,
			Schema:      op.RequestBody.Schema,
			Description: op.RequestBody.Description,
		})
	}

	m.PathParts = splitPath(op.Path, pathIdents)
	m.Success, m.Error = selectResponseTypes(op.Responses)
	m.Docs = methodDocs(op, m.Params)
	return m
}

// selectResponseTypes picks the success and error payload schemas.
func selectResponseTypes(responses []ir.IRResponse) (success, failure *ir.IRSchema) {
	for _, r := range responses {
		if r.StatusCode == successStatus && r.Schema != nil {
			success = r.Schema
		}
	}
	// responses arrive sorted by status code, which makes the first match
	// the lexicographically smallest one
	for _, r := range responses {
		if isErrorStatus(r.StatusCode) && r.Schema != nil {
			failure = r.Schema
			break
		}
	}
	return success, failure
}

func isErrorStatus(code string) bool {
	if len(code) != 3 {
		return false
	}
	if code[0] != '4' && code[0] != '5' {
		return false
	}
	rest := strings.ToUpper(code[1:])
	if rest == "XX" {
		return true
	}
	return rest[0] >= '0' && rest[0] <= '9' && rest[1] >= '0' && rest[1] <= '9'
}

// splitPath breaks /items/{id} into literal and parameter parts. A
// placeholder without a declared path parameter stays literal.
func splitPath(path string, idents map[string]string) []ir.IRPathPart {
	var parts []ir.IRPathPart
	var lit strings.Builder
	for i := 0; i < len(path); i++ {
		if path[i] == '{' {
			j := strings.IndexByte(path[i:], '}')
			if j > 0 {
				name := path[i+1 : i+j]
				if ident, ok := idents[name]; ok {
					if lit.Len() > 0 {
						parts = append(parts, ir.IRPathPart{Literal: lit.String()})
						lit.Reset()
					}
					parts = append(parts, ir.IRPathPart{Param: ident})
					i += j
					continue
				}
			}
		}
		lit.WriteByte(path[i])
	}
	if lit.Len() > 0 {
		parts = append(parts, ir.IRPathPart{Literal: lit.String()})
	}
	return parts
}

func methodDocs(op ir.IROperation, params []ir.IRMethodParam) []string {
	var docs []string
	text := op.Description
	if strings.TrimSpace(text) == "" {
		text = op.Summary
	}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line = strings.TrimRight(line, " \t\r"); line != "" || len(docs) > 0 {
			docs = append(docs, line)
		}
	}
	for _, p := range params {
		desc := strings.Join(strings.Fields(p.Description), " ")
		if desc == "" {
			continue
		}
		docs = append(docs, fmt.Sprintf("@param %s %s", p.Ident, desc))
	}
	if op.Deprecated {
		docs = append(docs, "@deprecated")
	}
	return docs
}
