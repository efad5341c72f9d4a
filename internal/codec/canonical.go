package codec

import (
	"reflect"
	"sort"
)

// canonicalMap is the deterministic substitute Encode writes in place of
// every string-keyed map it encounters. encoding/gob walks a map via
// reflect.Value.MapRange, which follows Go's randomized map iteration
// order, not insertion or sorted order — so gob-encoding the same
// logical map twice, even within a single process, is not guaranteed to
// produce the same bytes. Two parallel slices in sorted-key order remove
// that source of nondeterminism: the encoding depends only on the map's
// contents.
type canonicalMap struct {
	Keys   []string
	Values []any
}

func init() {
	Register(canonicalMap{})
}

// canonicalize returns v with every string-keyed map — including ones
// nested inside slices, arrays, or other maps — replaced by a
// canonicalMap in sorted-key order. A map keyed by anything other than
// string passes through unchanged, as does a struct: gob already encodes
// struct fields in their fixed declaration order and slice/array
// elements in index order, so only maps need rewriting. A struct field
// that is itself a map is a known gap this does not close; the
// debuggee-side arguments this codec exists for arrive as Go's
// interface{} rendering of dynamic values (maps, slices, and scalars),
// never as hand-written structs carrying map fields.
func canonicalize(v any) any {
	if v == nil {
		return nil
	}
	return canonicalizeValue(reflect.ValueOf(v)).Interface()
}

func canonicalizeValue(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		return reflect.ValueOf(canonicalize(rv.Interface()))

	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return rv
		}
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		sort.Strings(keys)
		values := make([]any, len(keys))
		for i, k := range keys {
			mapKey := reflect.ValueOf(k).Convert(rv.Type().Key())
			values[i] = canonicalize(rv.MapIndex(mapKey).Interface())
		}
		return reflect.ValueOf(canonicalMap{Keys: keys, Values: values})

	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(canonicalizeValue(rv.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(canonicalizeValue(rv.Index(i)))
		}
		return out

	default:
		return rv
	}
}

// decanonicalize is canonicalize's inverse, applied after gob decoding:
// every canonicalMap becomes a map[string]any again, recursively.
func decanonicalize(v any) any {
	switch t := v.(type) {
	case canonicalMap:
		out := make(map[string]any, len(t.Keys))
		for i, k := range t.Keys {
			out[k] = decanonicalize(t.Values[i])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decanonicalize(e)
		}
		return out
	default:
		return v
	}
}
