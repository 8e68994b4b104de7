package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKeyOrder(t *testing.T) {
	node := NewObject()
	node.Set("zeta", NewString("1"))
	node.Set("alpha", NewString("2"))
	node.Set("mid", NewString("3"))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, node.Keys())

	data, err := json.Marshal(node)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":"2","mid":"3"}`, string(data))
}

func TestNodeSetTwiceKeepsPosition(t *testing.T) {
	node := NewObject()
	node.Set("a", NewString("1"))
	node.Set("b", NewString("2"))
	node.Set("a", NewString("updated"))

	data, err := json.Marshal(node)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"updated","b":"2"}`, string(data))
}

func TestNodeNesting(t *testing.T) {
	inner := NewObject()
	inner.Set(".read", NewString("true"))

	node := NewObject()
	node.Set("rules", inner)
	node.Set("list", NewArray(NewString("a"), NewString("b")))

	data, err := json.MarshalIndent(node, "", "  ")
	require.NoError(t, err)

	expected := `{
  "rules": {
    ".read": "true"
  },
  "list": [
    "a",
    "b"
  ]
}`
	assert.Equal(t, expected, string(data))
}

func TestNodeStringEscaping(t *testing.T) {
	node := NewObject()
	node.Set("rule", NewString(`data.val() == "x"`))

	data, err := json.Marshal(node)
	require.NoError(t, err)
	assert.Equal(t, `{"rule":"data.val() == \"x\""}`, string(data))
}
