package codec

import (
	"fmt"
	"reflect"
	"time"
)

func init() {
	Register(Placeholder{})
}

// Placeholder is the sentinel value decode produces in place of anything
// that could not be structurally encoded. It carries enough diagnostic
// metadata to be useful in an operator-facing UI without ever carrying the
// original, un-encodable state.
type Placeholder struct {
	TypeName   string            `json:"type_name"`
	Module     string            `json:"module"`
	Repr       string            `json:"repr"`
	Str        string            `json:"str"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Errors     []string          `json:"error_chain,omitempty"`
	Timestamp  float64           `json:"timestamp"`
	Circular   bool              `json:"circular,omitempty"`
}

// placeholderDepth and placeholderBreadth bound the attribute snapshot a
// placeholder captures from a value reflection cannot otherwise encode.
const (
	placeholderDepth   = 3
	placeholderBreadth = 100
)

// buildPlaceholder captures what it can about v via reflection without
// ever panicking or recursing unboundedly.
func buildPlaceholder(v any, chain []error) Placeholder {
	t := reflect.TypeOf(v)
	p := Placeholder{
		Repr:      fmt.Sprintf("%#v", v),
		Str:       fmt.Sprintf("%v", v),
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}
	if t != nil {
		p.TypeName = t.Name()
		p.Module = t.PkgPath()
	}
	for _, err := range chain {
		if err != nil {
			p.Errors = append(p.Errors, err.Error())
		}
	}
	p.Attributes = snapshotAttributes(reflect.ValueOf(v), placeholderDepth, placeholderBreadth, map[uintptr]bool{})
	return p
}

// circularPlaceholder builds the placeholder emitted when encode detects a
// value already visited in the current call.
func circularPlaceholder(v any) Placeholder {
	p := buildPlaceholder(v, nil)
	p.Circular = true
	return p
}

// snapshotAttributes walks v's exported fields (or map entries) up to
// depth levels deep and at most breadth entries per level, rendering
// everything to strings so the snapshot itself can never fail to encode.
func snapshotAttributes(v reflect.Value, depth, breadth int, visited map[uintptr]bool) map[string]string {
	if depth <= 0 || !v.IsValid() {
		return nil
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Ptr {
			addr := v.Pointer()
			if visited[addr] {
				return map[string]string{"<circular>": "true"}
			}
			visited[addr] = true
		}
		v = v.Elem()
	}

	out := map[string]string{}
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		n := 0
		for i := 0; i < t.NumField() && n < breadth; i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			out[f.Name] = fmt.Sprintf("%v", safeInterface(v.Field(i)))
			n++
		}
	case reflect.Map:
		n := 0
		for _, key := range v.MapKeys() {
			if n >= breadth {
				break
			}
			out[fmt.Sprintf("%v", safeInterface(key))] = fmt.Sprintf("%v", safeInterface(v.MapIndex(key)))
			n++
		}
	default:
		return nil
	}
	return out
}

func safeInterface(v reflect.Value) (result any) {
	defer func() {
		if recover() != nil {
			result = "<unreadable>"
		}
	}()
	if v.CanInterface() {
		return v.Interface()
	}
	return "<unexported>"
}
