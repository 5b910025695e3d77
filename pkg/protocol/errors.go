package protocol

import (
	"errors"
	"fmt"
)

// DecodeErrorKind classifies why a message was rejected.
type DecodeErrorKind string

const (
	// DecodeMalformed means the payload is not a JSON object.
	DecodeMalformed DecodeErrorKind = "malformed"
	// DecodeMissingType means the "type" member is absent or empty.
	DecodeMissingType DecodeErrorKind = "missingType"
	// DecodeUnknownType means the "type" names no known variant.
	DecodeUnknownType DecodeErrorKind = "unknownType"
	// DecodeInvalid means a known variant failed its shape checks.
	DecodeInvalid DecodeErrorKind = "invalid"
)

// ErrMalformedMessage matches every *DecodeError via errors.Is.
var ErrMalformedMessage = errors.New("protocol: malformed message")

// DecodeError describes a message that failed validation. What to do with
// the connection afterwards is up to the caller.
type DecodeError struct {
	Kind  DecodeErrorKind
	Type  string
	Field string
	Cause error
}

func (e *DecodeError) Error() string {
	msg := "protocol: " + string(e.Kind)
	if e.Type != "" {
		msg += fmt.Sprintf(" %s", e.Type)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": %s", e.Field)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) Is(target error) bool { return target == ErrMalformedMessage }
