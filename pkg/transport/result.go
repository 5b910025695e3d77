package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Result holds exactly one of a success payload or an error payload.
// Build it with Ok or Err; the zero value is not a valid Result.
type Result[T, E any] struct {
	ok  *T
	err *E
}

// Ok wraps a success payload.
func Ok[T, E any](v T) Result[T, E] { return Result[T, E]{ok: &v} }

// Err wraps an error payload.
func Err[T, E any](e E) Result[T, E] { return Result[T, E]{err: &e} }

// IsOk reports whether the result is the success variant.
func (r Result[T, E]) IsOk() bool { return r.ok != nil }

// IsError reports whether the result is the error variant.
func (r Result[T, E]) IsError() bool { return r.err != nil }

// Value returns the success payload.
func (r Result[T, E]) Value() (T, bool) {
	if r.ok == nil {
		var zero T
		return zero, false
	}
	return *r.ok, true
}

// Error returns the error payload.
func (r Result[T, E]) Error() (E, bool) {
	if r.err == nil {
		var zero E
		return zero, false
	}
	return *r.err, true
}

type resultWire struct {
	IsOk    bool            `json:"is_ok"`
	IsError bool            `json:"is_error"`
	Ok      json.RawMessage `json:"ok"`
	Error   json.RawMessage `json:"error"`
}

var errEmptyResult = errors.New("transport: result has neither ok nor error")

// MarshalJSON encodes the envelope with both discriminators and both
// payload fields, the absent one as null.
func (r Result[T, E]) MarshalJSON() ([]byte, error) {
	w := resultWire{Ok: json.RawMessage("null"), Error: json.RawMessage("null")}
	switch {
	case r.ok != nil:
		b, err := json.Marshal(*r.ok)
		if err != nil {
			return nil, fmt.Errorf("encoding ok payload: %w", err)
		}
		if isNull(b) {
			return nil, errors.New("transport: ok payload encodes to null")
		}
		w.IsOk, w.Ok = true, b
	case r.err != nil:
		b, err := json.Marshal(*r.err)
		if err != nil {
			return nil, fmt.Errorf("encoding error payload: %w", err)
		}
		if isNull(b) {
			return nil, errors.New("transport: error payload encodes to null")
		}
		w.IsError, w.Error = true, b
	default:
		return nil, errEmptyResult
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the envelope and rejects documents whose
// discriminators disagree with which payload is present.
func (r *Result[T, E]) UnmarshalJSON(data []byte) error {
	var w resultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	hasOk, hasErr := !isNull(w.Ok), !isNull(w.Error)
	if hasOk == hasErr {
		return fmt.Errorf("transport: result must carry exactly one of ok and error")
	}
	if w.IsOk != hasOk || w.IsError != hasErr {
		return fmt.Errorf("transport: result discriminators is_ok=%t is_error=%t disagree with payload", w.IsOk, w.IsError)
	}
	if hasOk {
		var v T
		if err := json.Unmarshal(w.Ok, &v); err != nil {
			return fmt.Errorf("decoding ok payload: %w", err)
		}
		*r = Ok[T, E](v)
		return nil
	}
	var e E
	if err := json.Unmarshal(w.Error, &e); err != nil {
		return fmt.Errorf("decoding error payload: %w", err)
	}
	*r = Err[T, E](e)
	return nil
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
