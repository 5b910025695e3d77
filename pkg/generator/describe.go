package generator

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"github.com/blimu-dev/tsclientgen/pkg/ir"
	"github.com/blimu-dev/tsclientgen/pkg/transport"
)

const contentJSON = "application/json"

// Describe extracts one operation descriptor per path and supported verb
// that has an operationId. Paths are visited in sorted order and verbs in
// transport.Methods order.
func Describe(doc *openapi3.T, logger zerolog.Logger) []ir.IROperation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var ops []ir.IROperation
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		for verb, op := range item.Operations() {
			if op != nil && !transport.Method(strings.ToLower(verb)).Valid() {
				logger.Debug().Str("path", path).Str("method", verb).Msg("skipping unsupported method")
			}
		}
		for _, m := range transport.Methods {
			op := item.GetOperation(m.HTTP())
			if op == nil {
				continue
			}
			if op.OperationID == "" {
				logger.Debug().Str("path", path).Str("method", string(m)).Msg("skipping operation without operationId")
				continue
			}
			ops = append(ops, describeOperation(path, string(m), item, op, logger))
		}
	}
	return ops
}

func describeOperation(path, method string, item *openapi3.PathItem, op *openapi3.Operation, logger zerolog.Logger) ir.IROperation {
	out := ir.IROperation{
		OperationID: op.OperationID,
		Method:      method,
		Path:        path,
		Tags:        append([]string(nil), op.Tags...),
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
	}

	for _, p := range mergeParams(item.Parameters, op.Parameters) {
		switch p.In {
		case openapi3.ParameterInPath, openapi3.ParameterInHeader:
			out.Params = append(out.Params, ir.IRParam{
				Name:        p.Name,
				In:          ir.IRParamLocation(p.In),
				Required:    p.Required || p.In == openapi3.ParameterInPath,
				Schema:      paramSchema(p),
				Description: p.Description,
			})
		default:
			logger.Debug().
				Str("operationId", op.OperationID).
				Str("param", p.Name).
				Str("in", p.In).
				Msg("parameter location not supported, skipping")
		}
	}

	out.RequestBody = extractRequestBody(op)
	if out.RequestBody != nil && method == string(transport.MethodGet) {
		logger.Debug().Str("operationId", op.OperationID).Msg("ignoring request body on get")
		out.RequestBody = nil
	}
	out.Responses = extractResponses(op)
	return out
}

// mergeParams combines path-level and operation-level parameters. An
// operation parameter replaces the path-level one with the same name and
// location in place; new ones are appended in declaration order.
func mergeParams(pathLevel, opLevel openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := map[string]int{}
	add := func(refs openapi3.Parameters) {
		for _, pr := range refs {
			if pr == nil || pr.Value == nil {
				continue
			}
			key := pr.Value.In + "\x00" + pr.Value.Name
			if i, ok := index[key]; ok {
				out[i] = pr.Value
				continue
			}
			index[key] = len(out)
			out = append(out, pr.Value)
		}
	}
	add(pathLevel)
	add(opLevel)
	return out
}

func paramSchema(p *openapi3.Parameter) ir.IRSchema {
	if p.Schema != nil {
		return schemaRefToIR(p.Schema)
	}
	if media := jsonMedia(p.Content); media != nil {
		return schemaRefToIR(media.Schema)
	}
	return ir.IRSchema{Kind: ir.IRKindString}
}

// jsonMedia picks application/json, falling back to the first +json media
// type in sorted order.
func jsonMedia(content openapi3.Content) *openapi3.MediaType {
	if content == nil {
		return nil
	}
	if media, ok := content[contentJSON]; ok && media != nil {
		return media
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ct := strings.ToLower(strings.TrimSpace(strings.SplitN(k, ";", 2)[0]))
		if ct == contentJSON || strings.HasSuffix(ct, "+json") {
			return content[k]
		}
	}
	return nil
}

// extractRequestBody returns the JSON request body, if any
func extractRequestBody(op *openapi3.Operation) *ir.IRRequestBody {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	rb := op.RequestBody.Value
	media := jsonMedia(rb.Content)
	if media == nil {
		return nil
	}
	return &ir.IRRequestBody{
		ContentType: contentJSON,
		Required:    rb.Required,
		Schema:      schemaRefToIR(media.Schema),
		Description: rb.Description,
	}
}

// extractResponses returns the response table ordered by status code
func extractResponses(op *openapi3.Operation) []ir.IRResponse {
	if op.Responses == nil {
		return nil
	}
	m := op.Responses.Map()
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]ir.IRResponse, 0, len(codes))
	for _, code := range codes {
		rr := m[code]
		resp := ir.IRResponse{StatusCode: code}
		if rr != nil && rr.Value != nil {
			if rr.Value.Description != nil {
				resp.Description = *rr.Value.Description
			}
			if media := jsonMedia(rr.Value.Content); media != nil && media.Schema != nil {
				s := schemaRefToIR(media.Schema)
				resp.Schema = &s
			}
		}
		out = append(out, resp)
	}
	return out
}
