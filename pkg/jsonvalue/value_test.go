package jsonvalue

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesMemberOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta": 1, "alpha": {"y": true, "x": null}, "mid": [1.5, "s"]}`))
	require.NoError(t, err)

	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Object().Keys())
	assert.Equal(t, `{"zeta":1,"alpha":{"y":true,"x":null},"mid":[1.5,"s"]}`, v.String())
}

func TestParse_YAMLScalars(t *testing.T) {
	v, err := Parse([]byte("count: 3\nratio: 0.25\nflag: yes\nquoted: \"42\"\nempty: ~\n"))
	require.NoError(t, err)

	n, ok := v.Field("count").AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(3), n)

	f, ok := v.Field("ratio").AsDouble()
	require.True(t, ok)
	assert.InDelta(t, 0.25, f, 1e-9)

	// YAML 1.2 (yaml.v3) treats "yes" as a string.
	assert.Equal(t, "yes", v.Field("flag").Str())
	assert.Equal(t, "42", v.Field("quoted").Str())
	assert.True(t, v.Field("empty").IsNull())
	assert.True(t, v.Field("missing").IsNull())
}

func TestParse_JSONEscapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"surrogate pair", `{"b": "\ud83d\ude00", "a": 1}`, "\U0001F600"},
		{"solidus", `{"b": "a\/b", "a": 1}`, "a/b"},
		{"tab indented", "{\n\t\"b\": \"x\",\n\t\"a\": 1\n}", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, []string{"b", "a"}, v.Object().Keys())
			assert.Equal(t, tt.want, v.Field("b").Str())
			n, ok := v.Field("a").AsInt()
			require.True(t, ok)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	v, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("{unterminated: [1, 2"))
	assert.Error(t, err)
}

func TestObject_SetKeepsFirstPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", Int(1))
	o.Set("b", Int(2))
	o.Set("a", Int(3))

	assert.Equal(t, []string{"a", "b"}, o.Keys())
	assert.Equal(t, `{"a":3,"b":2}`, FromObject(o).String())
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	assert.Equal(t, `"<a&b>"`, String("<a&b>").String())
}

func TestMarshal_NonFiniteDoubles(t *testing.T) {
	assert.Equal(t, "null", Double(math.NaN()).String())
	assert.Equal(t, "null", Double(math.Inf(1)).String())
}

func TestMarshal_InsideEncodingJSON(t *testing.T) {
	o := NewObject()
	o.Set("second", String("x"))
	o.Set("first", Array(Int(1), Bool(false)))

	b, err := json.Marshal(map[string]Value{"body": FromObject(o)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"body":{"second":"x","first":[1,false]}}`, string(b))
}

func TestFromAny(t *testing.T) {
	v := FromAny(map[string]any{
		"b":    []any{1, 2.5, "x"},
		"a":    true,
		"n":    json.Number("12"),
		"null": nil,
	})

	assert.Equal(t, []string{"a", "b", "n", "null"}, v.Object().Keys())
	assert.Equal(t, `{"a":true,"b":[1,2.5,"x"],"n":12,"null":null}`, v.String())
}

func TestEqual_CrossNumericKinds(t *testing.T) {
	assert.True(t, Int(2).Equal(Double(2)))
	assert.False(t, Int(2).Equal(String("2")))
	assert.True(t, Array(Int(1)).Equal(Array(Int(1))))
	assert.False(t, Array(Int(1)).Equal(Array(Int(1), Int(2))))
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"string", String("abc"), "abc"},
		{"int", Int(-7), "-7"},
		{"double", Double(1.25), "1.25"},
		{"bool", Bool(true), "true"},
		{"null", Null(), ""},
		{"array", Array(Int(1)), "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Text())
		})
	}
}

func TestInterface_RoundTrip(t *testing.T) {
	v, err := Parse([]byte(`{"a":[1,"b",{"c":false}]}`))
	require.NoError(t, err)

	got := v.Interface().(map[string]any)
	items := got["a"].([]any)
	assert.Equal(t, int64(1), items[0])
	assert.Equal(t, "b", items[1])
	assert.Equal(t, map[string]any{"c": false}, items[2])
}
