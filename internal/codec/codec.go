package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"
)

// Register makes a concrete type available to the structural codec, the
// same way callers of encoding/gob register types that will travel behind
// an interface{}. Call it once per type, typically from an init func.
func Register(v any) {
	gob.Register(v)
}

// Reducer produces a gob-encodable substitute for a value the structural
// codec cannot encode directly. The reducer registered by default in
// init reduces any error to an {type_name, message} pair.
type Reducer interface {
	Reduce(v any) (substitute any, ok bool)
}

// ReducerFunc adapts a function to the Reducer interface.
type ReducerFunc func(v any) (any, bool)

// Reduce calls f.
func (f ReducerFunc) Reduce(v any) (any, bool) { return f(v) }

var reducers []Reducer

// RegisterReducer adds r to the set consulted when structural encoding
// fails, before falling back to a placeholder.
func RegisterReducer(r Reducer) {
	reducers = append(reducers, r)
}

type errorSubstitute struct {
	TypeName string
	Message  string
}

func init() {
	Register(errorSubstitute{})
	RegisterReducer(ReducerFunc(func(v any) (any, bool) {
		err, ok := v.(error)
		if !ok {
			return nil, false
		}
		return errorSubstitute{TypeName: fmt.Sprintf("%T", v), Message: err.Error()}, true
	}))
}

// envelope is the on-wire gob container for any value passed through
// Encode/Decode. Wrapping in a struct lets the zero value of the
// interface field round-trip through gob without the caller needing a
// concrete top-level type.
type envelope struct {
	Value any
}

type options struct {
	strict bool
}

// Option configures a single Encode call.
type Option func(*options)

// WithStrict makes Encode return an error instead of degrading to a
// placeholder when a value cannot be structurally encoded.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// Encode produces a deterministic byte encoding of v. Encoding never
// fails in default mode: a value that cannot be structurally encoded, and
// for which no registered Reducer applies, degrades to a Placeholder
// carrying diagnostic metadata instead. With WithStrict, the same failure
// returns an error.
//
// A value already visited earlier in this call (a cycle reachable through
// pointers, slices, maps, or struct fields) is replaced wholesale with a
// circular-reference placeholder before any attempt at structural
// encoding, satisfying the re-entrancy requirement without risking an
// unbounded recursive encode.
func Encode(v any, opts ...Option) ([]byte, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if detectCycle(reflect.ValueOf(v), map[uintptr]bool{}, 0) {
		v = circularPlaceholder(v)
	}

	if data, err := gobEncode(canonicalize(v)); err == nil {
		return data, nil
	} else if o.strict {
		return encodeStrictFailure(v, err, o)
	} else {
		return encodeDegraded(v, err)
	}
}

func encodeStrictFailure(v any, err error, o options) ([]byte, error) {
	for _, r := range reducers {
		sub, ok := r.Reduce(v)
		if !ok {
			continue
		}
		if data, err2 := gobEncode(sub); err2 == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("codec: encode failed: %w", err)
}

func encodeDegraded(v any, firstErr error) ([]byte, error) {
	chain := []error{firstErr}
	for _, r := range reducers {
		sub, ok := r.Reduce(v)
		if !ok {
			continue
		}
		if data, err := gobEncode(sub); err == nil {
			return data, nil
		} else {
			chain = append(chain, err)
		}
	}

	placeholder := buildPlaceholder(v, chain)
	data, err := gobEncode(placeholder)
	if err != nil {
		return nil, fmt.Errorf("codec: placeholder itself failed to encode: %w", err)
	}
	return data, nil
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&envelope{Value: v}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode. A placeholder produced by a prior
// degraded encode decodes to the Placeholder sentinel type, never to an
// error.
func Decode(data []byte) (any, error) {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("codec: decode failed: %w", err)
	}
	return decanonicalize(env.Value), nil
}
