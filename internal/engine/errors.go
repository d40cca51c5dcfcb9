package engine

import "errors"

// Errors returned by engine construction.
var (
	// ErrUnknownKind indicates a kind name or value that names no engine.
	ErrUnknownKind = errors.New("unknown engine kind")
)
