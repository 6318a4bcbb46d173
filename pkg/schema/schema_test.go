package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/specmock/pkg/jsonvalue"
)

func mustParse(t *testing.T, src string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(src))
	require.NoError(t, err)
	return v
}

func TestFromValue_Object(t *testing.T) {
	n := FromValue(mustParse(t, `{
		"type": "object",
		"properties": {
			"id": {"type": "integer", "format": "int64", "minimum": 1, "exclusiveMinimum": true},
			"name": {"type": "string", "example": "doggie", "maxLength": 20},
			"tags": {"type": "array", "items": {"$ref": "#/definitions/Tag"}}
		}
	}`))
	require.NotNil(t, n)

	assert.Equal(t, KindObject, n.Kind)
	assert.Equal(t, []string{"id", "name", "tags"}, n.Properties.Names())

	id, ok := n.Properties.Get("id")
	require.True(t, ok)
	assert.Equal(t, KindInteger, id.Kind)
	assert.Equal(t, "int64", id.Format)
	require.NotNil(t, id.Minimum)
	assert.Equal(t, 1.0, *id.Minimum)
	assert.True(t, id.ExclusiveMinimum)

	name, _ := n.Properties.Get("name")
	require.NotNil(t, name.Example)
	assert.Equal(t, "doggie", name.Example.Str())
	require.NotNil(t, name.MaxLength)
	assert.Equal(t, 20, *name.MaxLength)

	tags, _ := n.Properties.Get("tags")
	assert.Equal(t, KindArray, tags.Kind)
	require.NotNil(t, tags.Items)
	assert.True(t, tags.Items.IsReference())
	assert.Equal(t, "Tag", tags.Items.Ref)
}

func TestFromValue_InferredKinds(t *testing.T) {
	obj := FromValue(mustParse(t, `{"properties": {"a": {"type": "string"}}}`))
	assert.Equal(t, KindObject, obj.Kind)

	arr := FromValue(mustParse(t, `{"items": {"type": "string"}}`))
	assert.Equal(t, KindArray, arr.Kind)

	nullable := FromValue(mustParse(t, `{"type": ["null", "integer"]}`))
	assert.Equal(t, KindInteger, nullable.Kind)
}

func TestFromValue_AdditionalProperties(t *testing.T) {
	n := FromValue(mustParse(t, `{"type": "object", "additionalProperties": {"type": "integer"}}`))
	require.NotNil(t, n.AdditionalProperties)
	assert.Equal(t, KindInteger, n.AdditionalProperties.Kind)

	open := FromValue(mustParse(t, `{"type": "object", "additionalProperties": true}`))
	require.NotNil(t, open.AdditionalProperties)
	assert.Equal(t, KindString, open.AdditionalProperties.Kind)

	closed := FromValue(mustParse(t, `{"type": "object", "additionalProperties": false}`))
	assert.Nil(t, closed.AdditionalProperties)
}

func TestFromValue_NumericExclusiveBounds(t *testing.T) {
	n := FromValue(mustParse(t, `{"type": "number", "exclusiveMaximum": 10}`))
	assert.True(t, n.ExclusiveMaximum)
	require.NotNil(t, n.Maximum)
	assert.Equal(t, 10.0, *n.Maximum)
}

func TestFromValue_Malformed(t *testing.T) {
	assert.Nil(t, FromValue(jsonvalue.String("not a schema")))

	n := FromValue(mustParse(t, `{"type": 42, "properties": "nope", "enum": {}}`))
	require.NotNil(t, n)
	assert.Equal(t, KindUnknown, n.Kind)
	assert.Nil(t, n.Properties)
	assert.Empty(t, n.Enum)
}

func TestRefName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"#/definitions/Pet", "Pet"},
		{"#/components/schemas/Order", "Order"},
		{"#/definitions/a~1b~0c", "a/b~c"},
		{"Plain", "Plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, RefName(tt.ref))
		})
	}
}

func TestDefinitionsLookup(t *testing.T) {
	defs := Definitions{"Pet": {Kind: KindObject}, "Nil": nil}

	_, ok := defs.Lookup("Pet")
	assert.True(t, ok)
	_, ok = defs.Lookup("Nil")
	assert.False(t, ok)
	_, ok = defs.Lookup("Missing")
	assert.False(t, ok)
}
