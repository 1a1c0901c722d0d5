package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorsTolerateMissingAndWrongTypes(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"s":"x","n":42,"b":true,"o":{"k":"v"},"a":[1,2]}`), &m))

	assert.Equal(t, "x", String(m, "s"))
	assert.Equal(t, "42", String(m, "n"), "integral float64 renders without decimals")
	assert.Equal(t, "true", String(m, "b"))
	assert.Equal(t, "", String(m, "missing"))
	assert.Equal(t, "", String(nil, "s"))

	assert.Equal(t, "v", String(Map(m, "o"), "k"))
	assert.Nil(t, Map(m, "s"), "non-object returns nil map")
	assert.Len(t, Array(m, "a"), 2)
	assert.Nil(t, Array(m, "o"))

	assert.True(t, Bool(m, "b"))
	assert.False(t, Bool(m, "s"))
	assert.Equal(t, 42, Int(m, "n"))
	assert.Equal(t, 0, Int(m, "missing"))
}

func TestBoolParsesStringForms(t *testing.T) {
	m := map[string]any{"t": "true", "f": "false", "junk": "maybe"}
	assert.True(t, Bool(m, "t"))
	assert.False(t, Bool(m, "f"))
	assert.False(t, Bool(m, "junk"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "3", Stringify(float64(3)))
	assert.Equal(t, "3.5", Stringify(3.5))
	assert.Equal(t, "abc", Stringify("abc"))
	assert.Equal(t, "false", Stringify(false))
}
