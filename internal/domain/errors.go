package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets the typed errors match their sentinels with errors.Is()
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRemote       = errors.New("remote request failed")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (code, codebook, collaborator)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// RemoteError is returned by API clients when the project-data API call failed:
// transport error, non-2xx status, or an undecodable response.
// StatusCode is 0 when no HTTP response was received.
type RemoteError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": remote request failed"
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is matches ErrRemote, and the sentinel matching the HTTP status the server answered with,
// so callers can still branch on errors.Is(err, ErrNotFound) for a 404.
func (e *RemoteError) Is(target error) bool {
	if target == ErrRemote {
		return true
	}
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return target == ErrValidation
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrConflict
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	}
	return false
}
