// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"strings"
)

// Route parses "METHOD /path". A bare path means GET. The method is upper
// cased and the path must start with '/'.
func Route(s string) (method, path string, ok bool) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		method, path = "GET", fields[0]
	case 2:
		method, path = strings.ToUpper(fields[0]), fields[1]
	default:
		return "", "", false
	}
	if !strings.HasPrefix(path, "/") {
		return "", "", false
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return method, path, true
}
