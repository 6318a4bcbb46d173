// Package document normalizes Swagger 2.0 and OpenAPI 3 documents into one
// dialect-independent model of operations, responses and named schemas.
//
// Parsing is tolerant: once the input decodes as JSON or YAML, missing or
// mistyped fields degrade to empty values instead of errors, so a partial
// document still yields every operation it declares.
package document
