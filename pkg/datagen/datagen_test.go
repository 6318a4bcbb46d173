package datagen

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/schema"
)

func ptr[T any](v T) *T { return &v }

func TestFixed_ForFormat(t *testing.T) {
	p := NewFixed(DefaultValues())

	tests := []struct {
		format string
		want   jsonvalue.Value
	}{
		{"int32", jsonvalue.Int(1234)},
		{"int64", jsonvalue.Int(123456789)},
		{"float", jsonvalue.Double(1.23)},
		{"double", jsonvalue.Double(12.3456)},
		{"boolean", jsonvalue.Bool(true)},
		{"byte", jsonvalue.String("U3dhZ2dlciByb2Nrcw==")},
		{"date", jsonvalue.String("2017-07-21")},
		{"date-time", jsonvalue.String("2017-07-21T17:32:28Z")},
		{"dateTime", jsonvalue.String("2017-07-21T17:32:28Z")},
		{"email", jsonvalue.String("firstname@domain.com")},
		{"uuid", jsonvalue.String("3fa85f64-5717-4562-b3fc-2c963f66afa6")},
		{"url", jsonvalue.String("http://example.com")},
		{"ipv4", jsonvalue.String("127.0.0.1")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got := p.ForFormat(tt.format, &schema.Node{Kind: schema.KindString})
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFixed_UnknownFormatFallsBackToKind(t *testing.T) {
	d := DefaultValues()
	d.Others = "other"
	d.Int64 = 7
	p := NewFixed(d)

	assert.Equal(t, "other", p.ForFormat("color", &schema.Node{Kind: schema.KindString}).Str())
	assert.Equal(t, "other", p.ForFormat("EMAIL", nil).Str(), "format names are case-sensitive")

	n, ok := p.ForFormat("counter", &schema.Node{Kind: schema.KindInteger}).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(7), n)
}

func TestFixed_ForKind(t *testing.T) {
	p := NewFixed(DefaultValues())

	i, _ := p.ForKind(schema.KindInteger, nil).AsInt()
	assert.Equal(t, int64(123456789), i)
	f, _ := p.ForKind(schema.KindNumber, nil).AsDouble()
	assert.Equal(t, 12.3456, f)
	b, _ := p.ForKind(schema.KindBoolean, nil).AsBool()
	assert.True(t, b)
	assert.Equal(t, "Lorem ipsum dolor sit amet", p.ForKind(schema.KindString, nil).Str())
	assert.Equal(t, "Lorem ipsum dolor sit amet", p.ForKind(schema.KindUnknown, nil).Str())
}

func TestCanonical(t *testing.T) {
	c, ok := Canonical("dateTime")
	assert.True(t, ok)
	assert.Equal(t, FormatDateTime, c)

	c, ok = Canonical("url")
	assert.True(t, ok)
	assert.Equal(t, FormatURI, c)

	_, ok = Canonical("phone")
	assert.False(t, ok)
}

func TestRandom_IntegerBounds(t *testing.T) {
	p := NewRandom(NewFaker(42), DefaultRandomOptions())

	tests := []struct {
		name   string
		node   *schema.Node
		lo, hi int64
	}{
		{"inclusive", &schema.Node{Kind: schema.KindInteger, Minimum: ptr(1.0), Maximum: ptr(3.0)}, 1, 3},
		{"exclusive", &schema.Node{
			Kind: schema.KindInteger, Minimum: ptr(1.0), Maximum: ptr(3.0),
			ExclusiveMinimum: true, ExclusiveMaximum: true,
		}, 2, 2},
		{"configured range", &schema.Node{Kind: schema.KindInteger}, 0, 1000000},
		{"int32 clamp", &schema.Node{Kind: schema.KindInteger, Format: "int32", Minimum: ptr(-1e12)}, -1 << 31, 1000000},
		{"lone maximum below range", &schema.Node{Kind: schema.KindInteger, Maximum: ptr(-10.0)}, -1000010, -10},
		{"lone exclusive maximum", &schema.Node{Kind: schema.KindInteger, Maximum: ptr(-10.0), ExclusiveMaximum: true}, -1000011, -11},
		{"lone minimum above range", &schema.Node{Kind: schema.KindInteger, Minimum: ptr(5e6)}, 5000000, 6000000},
		{"int32 lone maximum", &schema.Node{Kind: schema.KindInteger, Format: "int32", Maximum: ptr(-2147483000.0)}, -1 << 31, -2147483000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 50 {
				v := p.ForFormat(tt.node.Format, tt.node)
				if tt.node.Format == "" {
					v = p.ForKind(tt.node.Kind, tt.node)
				}
				n, ok := v.AsInt()
				require.True(t, ok)
				assert.GreaterOrEqual(t, n, tt.lo)
				assert.LessOrEqual(t, n, tt.hi)
			}
		})
	}
}

func TestRandom_NumberBounds(t *testing.T) {
	p := NewRandom(NewFaker(7), RandomOptions{NumberMin: 10, NumberMax: 5})

	for range 50 {
		f, ok := p.ForKind(schema.KindNumber, nil).AsDouble()
		require.True(t, ok)
		assert.GreaterOrEqual(t, f, 5.0)
		assert.LessOrEqual(t, f, 10.0)
	}

	f, _ := p.ForFormat("double", &schema.Node{Minimum: ptr(2.5), Maximum: ptr(2.5)}).AsDouble()
	assert.Equal(t, 2.5, f)
}

func TestRandom_NumberLoneBound(t *testing.T) {
	p := NewRandom(NewFaker(11), DefaultRandomOptions())

	tests := []struct {
		name   string
		node   *schema.Node
		lo, hi float64
	}{
		{"maximum below range", &schema.Node{Kind: schema.KindNumber, Maximum: ptr(-10.0)}, -1000010, -10},
		{"minimum above range", &schema.Node{Kind: schema.KindNumber, Minimum: ptr(2e6)}, 2e6, 3e6},
		{"maximum inside range", &schema.Node{Kind: schema.KindNumber, Maximum: ptr(0.5)}, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 50 {
				f, ok := p.ForKind(schema.KindNumber, tt.node).AsDouble()
				require.True(t, ok)
				assert.GreaterOrEqual(t, f, tt.lo)
				assert.LessOrEqual(t, f, tt.hi)
			}
		})
	}
}

func TestRandom_Formats(t *testing.T) {
	opts := DefaultRandomOptions()
	opts.DateStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.DateEnd = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
	p := NewRandom(NewFaker(1), opts)

	_, err := uuid.Parse(p.ForFormat("uuid", nil).Str())
	assert.NoError(t, err)

	assert.Contains(t, p.ForFormat("email", nil).Str(), "@")

	ts, err := time.Parse(time.RFC3339, p.ForFormat("date-time", nil).Str())
	require.NoError(t, err)
	assert.Equal(t, 2020, ts.Year())

	d, err := time.Parse(time.DateOnly, p.ForFormat("date", nil).Str())
	require.NoError(t, err)
	assert.Equal(t, 2020, d.Year())

	_, err = base64.StdEncoding.DecodeString(p.ForFormat("byte", nil).Str())
	assert.NoError(t, err)

	assert.Equal(t, jsonvalue.KindBool, p.ForFormat("boolean", nil).Kind())
	assert.Equal(t, jsonvalue.KindString, p.ForFormat("unknown-format", nil).Kind())
}

func TestRandom_TextLength(t *testing.T) {
	p := NewRandom(NewFaker(3), DefaultRandomOptions())
	node := &schema.Node{Kind: schema.KindString, MinLength: ptr(40), MaxLength: ptr(45)}

	for range 20 {
		s := p.ForKind(schema.KindString, node).Str()
		assert.GreaterOrEqual(t, len(s), 40)
		assert.LessOrEqual(t, len(s), 45)
	}
}

func TestRandom_LongMinLength(t *testing.T) {
	p := NewRandom(NewFaker(5), DefaultRandomOptions())

	s := p.ForKind(schema.KindString, &schema.Node{Kind: schema.KindString, MinLength: ptr(5000)}).Str()
	assert.Len(t, s, 5000)

	s = p.ForKind(schema.KindString, &schema.Node{Kind: schema.KindString, MinLength: ptr(3000000)}).Str()
	assert.Len(t, s, maxTextLength)
}

func TestRandom_SameSeedSameOutput(t *testing.T) {
	a := NewRandom(NewFaker(99), DefaultRandomOptions())
	b := NewRandom(NewFaker(99), DefaultRandomOptions())

	for range 5 {
		assert.Equal(t, a.ForFormat("email", nil).Str(), b.ForFormat("email", nil).Str())
	}
}
