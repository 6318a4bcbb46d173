package datagen

import (
	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/schema"
)

// Defaults is the fixed-default table, one value per known format plus the
// generic fallback for free text. Field names double as configuration keys.
type Defaults struct {
	Int32    int64   `yaml:"int32DefaultValue" json:"int32DefaultValue"`
	Int64    int64   `yaml:"int64DefaultValue" json:"int64DefaultValue"`
	Float    float64 `yaml:"floatDefaultValue" json:"floatDefaultValue"`
	Double   float64 `yaml:"doubleDefaultValue" json:"doubleDefaultValue"`
	Boolean  bool    `yaml:"booleanDefaultValue" json:"booleanDefaultValue"`
	Byte     string  `yaml:"byteDefaultValue" json:"byteDefaultValue"`
	Binary   string  `yaml:"binaryDefaultValue" json:"binaryDefaultValue"`
	Date     string  `yaml:"dateDefaultValue" json:"dateDefaultValue"`
	DateTime string  `yaml:"dateTimeDefaultValue" json:"dateTimeDefaultValue"`
	Password string  `yaml:"passwordDefaultValue" json:"passwordDefaultValue"`
	Email    string  `yaml:"emailDefaultValue" json:"emailDefaultValue"`
	UUID     string  `yaml:"uuidDefaultValue" json:"uuidDefaultValue"`
	URI      string  `yaml:"uriDefaultValue" json:"uriDefaultValue"`
	Hostname string  `yaml:"hostnameDefaultValue" json:"hostnameDefaultValue"`
	IPv4     string  `yaml:"ipv4DefaultValue" json:"ipv4DefaultValue"`
	IPv6     string  `yaml:"ipv6DefaultValue" json:"ipv6DefaultValue"`
	Others   string  `yaml:"othersDefaultValue" json:"othersDefaultValue"`
}

// DefaultValues returns the built-in fixed-default table.
func DefaultValues() Defaults {
	return Defaults{
		Int32:    1234,
		Int64:    123456789,
		Float:    1.23,
		Double:   12.3456,
		Boolean:  true,
		Byte:     "U3dhZ2dlciByb2Nrcw==",
		Binary:   "VGhpcyBpcyBhIGJpbmFyeSBwYXlsb2Fk",
		Date:     "2017-07-21",
		DateTime: "2017-07-21T17:32:28Z",
		Password: "pass1234",
		Email:    "firstname@domain.com",
		UUID:     "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		URI:      "http://example.com",
		Hostname: "example.com",
		IPv4:     "127.0.0.1",
		IPv6:     "::1",
		Others:   "Lorem ipsum dolor sit amet",
	}
}

// Fixed returns the same configured value for every call.
type Fixed struct {
	defaults Defaults
}

// NewFixed creates a fixed-default provider over d.
func NewFixed(d Defaults) *Fixed {
	return &Fixed{defaults: d}
}

// ForFormat implements Provider.
func (f *Fixed) ForFormat(format string, node *schema.Node) jsonvalue.Value {
	d := f.defaults
	canonical, _ := Canonical(format)
	switch canonical {
	case FormatInt32:
		return jsonvalue.Int(d.Int32)
	case FormatInt64:
		return jsonvalue.Int(d.Int64)
	case FormatFloat:
		return jsonvalue.Double(d.Float)
	case FormatDouble:
		return jsonvalue.Double(d.Double)
	case FormatBoolean:
		return jsonvalue.Bool(d.Boolean)
	case FormatByte:
		return jsonvalue.String(d.Byte)
	case FormatBinary:
		return jsonvalue.String(d.Binary)
	case FormatDate:
		return jsonvalue.String(d.Date)
	case FormatDateTime:
		return jsonvalue.String(d.DateTime)
	case FormatPassword:
		return jsonvalue.String(d.Password)
	case FormatEmail:
		return jsonvalue.String(d.Email)
	case FormatUUID:
		return jsonvalue.String(d.UUID)
	case FormatURI:
		return jsonvalue.String(d.URI)
	case FormatHostname:
		return jsonvalue.String(d.Hostname)
	case FormatIPv4:
		return jsonvalue.String(d.IPv4)
	case FormatIPv6:
		return jsonvalue.String(d.IPv6)
	}
	return f.ForKind(kindOf(node), node)
}

// ForKind implements Provider.
func (f *Fixed) ForKind(kind schema.Kind, _ *schema.Node) jsonvalue.Value {
	switch kind {
	case schema.KindInteger:
		return jsonvalue.Int(f.defaults.Int64)
	case schema.KindNumber:
		return jsonvalue.Double(f.defaults.Double)
	case schema.KindBoolean:
		return jsonvalue.Bool(f.defaults.Boolean)
	default:
		return jsonvalue.String(f.defaults.Others)
	}
}
