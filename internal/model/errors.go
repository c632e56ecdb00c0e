package model

import "errors"

// Validation errors. These are programmer or input errors and are always
// returned to the caller.
var (
	ErrBlankName     = errors.New("name must not be blank")
	ErrUnknownKind   = errors.New("unknown kind")
	ErrKindMismatch  = errors.New("identifier kind does not match declared kind")
	ErrEmptyID       = errors.New("identifier must not be empty")
	ErrInvalidRecord = errors.New("invalid record")
)
