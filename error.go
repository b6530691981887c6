// Package skill converts MCP server configurations into Agent Skills: a
// SKILL.md document describing the server's tools, plus an executor that
// lists, describes and calls those tools on demand. This root package
// defines the error values shared by the packages underneath it.
package skill

import (
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrSuccess Err = iota
	ErrNotFound
	ErrBadParameter
	ErrNotImplemented
	ErrInternal
	ErrConfigFormat
	ErrConfigNotFound
	ErrDependencyMissing
	ErrTransport
	ErrToolNotFound
	ErrCall
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Errors
type Err int

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e Err) Error() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrNotFound:
		return "not found"
	case ErrBadParameter:
		return "bad parameter"
	case ErrNotImplemented:
		return "not implemented"
	case ErrInternal:
		return "internal error"
	case ErrConfigFormat:
		return "unrecognized config format"
	case ErrConfigNotFound:
		return "config not found"
	case ErrDependencyMissing:
		return "required transport capability unavailable"
	case ErrTransport:
		return "transport failure"
	case ErrToolNotFound:
		return "tool not found"
	case ErrCall:
		return "tool call failed"
	}
	return fmt.Sprintf("error code %d", int(e))
}

func (e Err) With(args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

func (e Err) Withf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}
