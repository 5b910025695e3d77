// Package transport is the Go side of the request/result contract that
// generated clients are written against: a verb-tagged Request, a two-variant
// Result envelope and a pluggable Requester.
package transport

import (
	"errors"
	"fmt"
	"strings"
)

// Method is a lower-case HTTP verb.
type Method string

const (
	MethodGet    Method = "get"
	MethodPost   Method = "post"
	MethodDelete Method = "delete"
	MethodPatch  Method = "patch"
	MethodPut    Method = "put"
)

// Methods lists every supported verb.
var Methods = []Method{MethodGet, MethodPost, MethodDelete, MethodPatch, MethodPut}

// ErrBodyOnGet is returned when a get request carries a body.
var ErrBodyOnGet = errors.New("transport: get requests cannot carry a body")

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// HTTP returns the verb as used on the wire.
func (m Method) HTTP() string { return strings.ToUpper(string(m)) }

// Request is one call against an API. Body is only allowed for mutating verbs.
type Request[B any] struct {
	Path    string
	Method  Method
	Headers map[string]string
	Body    *B
}

// Get builds a body-less get request.
func Get(path string, headers map[string]string) Request[struct{}] {
	return Request[struct{}]{Path: path, Method: MethodGet, Headers: headers}
}

// NewRequest builds a request that carries body. It fails for get.
func NewRequest[B any](method Method, path string, headers map[string]string, body B) (Request[B], error) {
	req := Request[B]{Path: path, Method: method, Headers: headers, Body: &body}
	if err := req.Validate(); err != nil {
		return Request[B]{}, err
	}
	return req, nil
}

// Validate checks the verb and the body rule.
func (r Request[B]) Validate() error {
	if !r.Method.Valid() {
		return fmt.Errorf("transport: unsupported method %q", r.Method)
	}
	if r.Method == MethodGet && r.Body != nil {
		return ErrBodyOnGet
	}
	if r.Path == "" || r.Path[0] != '/' {
		return fmt.Errorf("transport: path %q must start with /", r.Path)
	}
	return nil
}
