package core

import "errors"

// Structural violations. A failed call leaves all records unchanged; the
// caller decides whether to log, retry, or drop.
var (
	ErrAlreadyExists     = errors.New("task already exists")
	ErrNotFound          = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid task transition")
	ErrDuplicateRequest  = errors.New("oracle request id already correlated")
	ErrUnknownRequest    = errors.New("unknown oracle request id")
	ErrAlreadyResolved   = errors.New("task already resolved")
	ErrNotRegistered     = errors.New("operator not registered")
	ErrAlreadyRegistered = errors.New("operator already registered")
)
