package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	r.Register("add", func(args []any, kwargs map[string]any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	}, "(a, b)")

	fn, ok := r.Lookup("add")
	require.True(t, ok)

	result, err := fn([]any{2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, result)
}

func TestLookupUnknown(t *testing.T) {
	r := New()
	_, ok := r.Lookup("missing")
	assert.False(t, ok)
}

func TestSignaturesMatch(t *testing.T) {
	r := New()
	r.Register("add", nil, "(a, b)")
	r.Register("add_alt", nil, "(a, b)")
	r.Register("sub", nil, "(a, b, c)")

	assert.True(t, r.SignaturesMatch("add", "add_alt"))
	assert.False(t, r.SignaturesMatch("add", "sub"))
	assert.False(t, r.SignaturesMatch("add", "unregistered"))
}

func TestUpdateMetadata(t *testing.T) {
	r := New()
	r.Register("add", nil, "(a, b)")
	r.UpdateMetadata("add", map[string]string{"module": "mathlib"})

	meta, ok := r.Metadata("add")
	require.True(t, ok)
	assert.Equal(t, "mathlib", meta["module"])
}

func TestClear(t *testing.T) {
	r := New()
	r.Register("add", nil, "(a, b)")
	r.Clear()

	_, ok := r.Lookup("add")
	assert.False(t, ok)
	assert.Empty(t, r.List())
}
