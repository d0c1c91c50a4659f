package domain

import "github.com/pkg/errors"

// Sentinel errors for the simulation. Callers match them with errors.Is; the
// returned errors carry context and a stack from github.com/pkg/errors.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInsufficientData = errors.New("insufficient data")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrRunNotFound      = errors.New("simulation run not found")
)
