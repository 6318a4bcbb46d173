package cli

import "errors"

// Common CLI errors
var (
	ErrInvalidRequest = errors.New(`invalid request, want "METHOD /path"`)
	ErrNoRoute        = errors.New("no route matches")
)
