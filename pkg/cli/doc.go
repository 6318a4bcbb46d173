// Package cli provides the command-line interface for specmock.
//
// The cli package implements the commands:
//   - serve: Start a mock server for a Swagger or OpenAPI document
//   - routes: Print the routing table, or the route answering one request
//   - generate: Print a synthesized definition or operation response
//   - version: Show specmock version
//
// Settings are layered: built-in defaults, the --config file (or
// SPECMOCK_CONFIG), SPECMOCK_* environment variables, then flags set on the
// command line.
package cli
