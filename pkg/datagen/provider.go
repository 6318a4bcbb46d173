// Package datagen maps semantic schema formats to concrete scalar values.
//
// Two strategies implement Provider: NewFixed returns one configured value
// per format, NewRandom synthesizes a fresh value per call through a Faker.
package datagen

import (
	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/schema"
)

// Known format names. Matching is case-sensitive.
const (
	FormatInt32    = "int32"
	FormatInt64    = "int64"
	FormatFloat    = "float"
	FormatDouble   = "double"
	FormatByte     = "byte"
	FormatBinary   = "binary"
	FormatBoolean  = "boolean"
	FormatDate     = "date"
	FormatDateTime = "date-time"
	FormatPassword = "password"
	FormatEmail    = "email"
	FormatUUID     = "uuid"
	FormatURI      = "uri"
	FormatHostname = "hostname"
	FormatIPv4     = "ipv4"
	FormatIPv6     = "ipv6"
)

// aliases fold alternate spellings onto the canonical names above.
var aliases = map[string]string{
	"dateTime": FormatDateTime,
	"url":      FormatURI,
}

// Provider produces scalar values for schema nodes. Implementations must be
// safe for concurrent use and must never fail: an unknown format falls back
// to the default for the node's kind.
type Provider interface {
	// ForFormat returns a value for the given format. node supplies numeric
	// and length constraints and may be nil.
	ForFormat(format string, node *schema.Node) jsonvalue.Value

	// ForKind returns the type-directed default for a scalar kind.
	ForKind(kind schema.Kind, node *schema.Node) jsonvalue.Value
}

// Canonical returns the canonical spelling of format and whether it is one of
// the known formats.
func Canonical(format string) (string, bool) {
	if a, ok := aliases[format]; ok {
		format = a
	}
	switch format {
	case FormatInt32, FormatInt64, FormatFloat, FormatDouble, FormatByte, FormatBinary,
		FormatBoolean, FormatDate, FormatDateTime, FormatPassword, FormatEmail, FormatUUID,
		FormatURI, FormatHostname, FormatIPv4, FormatIPv6:
		return format, true
	}
	return format, false
}

func kindOf(node *schema.Node) schema.Kind {
	if node == nil {
		return schema.KindUnknown
	}
	return node.Kind
}
