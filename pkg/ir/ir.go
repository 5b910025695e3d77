package ir

// IRDocument is everything extracted from one schema document: its named
// definitions, the operation descriptors and the methods built from them.
type IRDocument struct {
	// Source is the input path or URL the document was read from
	Source string
	// Name is the source file name without extension
	Name string
	// ClassName is the generated client class name
	ClassName   string
	Title       string
	Definitions []IRModelDef
	Operations  []IROperation
	Methods     []IRMethod
}

// IRParamLocation is where a parameter travels in the HTTP request.
type IRParamLocation string

const (
	IRParamPath   IRParamLocation = "path"
	IRParamHeader IRParamLocation = "header"
	IRParamQuery  IRParamLocation = "query"
	IRParamCookie IRParamLocation = "cookie"
	IRParamBody   IRParamLocation = "body"
)

// IROperation describes one HTTP method on one path.
type IROperation struct {
	OperationID string
	// Method is the lower-case HTTP verb
	Method      string
	Path        string
	Tags        []string
	Summary     string
	Description string
	Deprecated  bool
	// Params holds path and header parameters in declaration order
	Params      []IRParam
	RequestBody *IRRequestBody
	// Responses is ordered by status code
	Responses []IRResponse
}

// IRParam represents a path or header parameter
type IRParam struct {
	Name        string
	In          IRParamLocation
	Required    bool
	Schema      IRSchema
	Description string
}

// IRRequestBody represents a JSON request body
type IRRequestBody struct {
	ContentType string
	Required    bool
	Schema      IRSchema
	Description string
}

// IRResponse is one entry of an operation's response table. Schema is nil
// when the response declares no JSON content.
type IRResponse struct {
	StatusCode  string
	Description string
	Schema      *IRSchema
}

// IRMethod is the language-neutral shape of one generated client method.
type IRMethod struct {
	Name       string
	HTTPMethod string
	Path       string
	PathParts  []IRPathPart
	// Params are path and header params followed by the body param, if any
	Params []IRMethodParam
	// Success is nil when the operation has no 200 JSON response
	Success *IRSchema
	// Error is nil when no 4xx/5xx JSON response exists
	Error      *IRSchema
	Docs       []string
	Deprecated bool
}

// HasBody reports whether the method sends a request body.
func (m IRMethod) HasBody() bool {
	for _, p := range m.Params {
		if p.In == IRParamBody {
			return true
		}
	}
	return false
}

// HeaderParams returns the params bound to request headers.
func (m IRMethod) HeaderParams() []IRMethodParam {
	var out []IRMethodParam
	for _, p := range m.Params {
		if p.In == IRParamHeader {
			out = append(out, p)
		}
	}
	return out
}

// IRMethodParam is a method argument. Ident is the argument name in the
// generated source, WireName the name used on the wire.
type IRMethodParam struct {
	Ident       string
	WireName    string
	In          IRParamLocation
	Required    bool
	Schema      IRSchema
	Description string
}

// IRPathPart is either a literal path segment or a reference to a path
// parameter by its argument name.
type IRPathPart struct {
	Literal string
	Param   string
}

// IRModelDef represents a named definition from components.schemas
type IRModelDef struct {
	Name        string
	Schema      IRSchema
	Annotations IRAnnotations
}

// IRAnnotations captures non-structural metadata rendered as doc comments.
type IRAnnotations struct {
	Description string
	Deprecated  bool
	ReadOnly    bool
	WriteOnly   bool
	Default     any
}

// IRSchemaKind represents the kind of schema
type IRSchemaKind string

const (
	IRKindUnknown IRSchemaKind = "unknown"
	IRKindString  IRSchemaKind = "string"
	IRKindNumber  IRSchemaKind = "number"
	IRKindInteger IRSchemaKind = "integer"
	IRKindBoolean IRSchemaKind = "boolean"
	IRKindNull    IRSchemaKind = "null"
	IRKindArray   IRSchemaKind = "array"
	IRKindObject  IRSchemaKind = "object"
	IRKindEnum    IRSchemaKind = "enum"
	IRKindRef     IRSchemaKind = "ref"
	IRKindOneOf   IRSchemaKind = "oneOf"
	IRKindAnyOf   IRSchemaKind = "anyOf"
	IRKindAllOf   IRSchemaKind = "allOf"
)

// IRSchema is a structural view of a JSON Schema
type IRSchema struct {
	Kind     IRSchemaKind
	Nullable bool
	Format   string

	// Object
	Properties []IRField
	// AdditionalProperties is nil when absent; AnyAdditional marks `true`
	AdditionalProperties *IRSchema
	AnyAdditional        bool

	// Array
	Items *IRSchema

	// Enum
	EnumValues []string
	EnumBase   IRSchemaKind

	// Ref is the component name
	Ref string

	OneOf []*IRSchema
	AnyOf []*IRSchema
	AllOf []*IRSchema
}

// IRField represents a field in an object schema
type IRField struct {
	Name        string
	Type        *IRSchema
	Required    bool
	Annotations IRAnnotations
}
