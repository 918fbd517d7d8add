package workspace

import (
	"context"
	"errors"
	"fmt"

	"qualcode/internal/domain"
)

var (
	// ErrInvalidSelection matches every *InvalidSelectionError.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrActionInFlight is returned when the same action is triggered again before the first finished.
	ErrActionInFlight = errors.New("action already in progress")
	// ErrNoProject is returned by project actions before Open succeeded.
	ErrNoProject = errors.New("no project open")
	// ErrRefreshFailed wraps a refresh failure that followed a successful mutation:
	// the change was saved but the local view was not reloaded.
	ErrRefreshFailed = errors.New("refresh failed")
)

// InvalidSelectionError reports a selection that cannot become a span.
// It matches both ErrInvalidSelection and domain.ErrValidation.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return "invalid selection: " + e.Reason
}

func (e *InvalidSelectionError) Is(target error) bool {
	return target == ErrInvalidSelection || target == domain.ErrValidation
}

// RefreshError reports that a mutation was persisted but the refresh that
// followed it failed. It matches ErrRefreshFailed and unwraps to the cause.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "saved, but refresh failed: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() error { return e.Err }

func (e *RefreshError) Is(target error) bool { return target == ErrRefreshFailed }

// Describe converts any error returned by the workspace into a message fit for display.
// It returns "" for nil.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var refreshErr *RefreshError
	var selErr *InvalidSelectionError
	var remote *domain.RemoteError

	switch {
	case errors.As(err, &refreshErr):
		return "Your change was saved, but the project could not be reloaded. " + describeCause(refreshErr.Err)
	case errors.As(err, &selErr):
		return "Select some text within a single document first (" + selErr.Reason + ")."
	case errors.Is(err, ErrActionInFlight):
		return "That action is already in progress."
	case errors.Is(err, ErrNoProject):
		return "Open a project first."
	case errors.As(err, &remote):
		return describeRemote(remote)
	}
	return describeCause(err)
}

func describeCause(err error) string {
	var remote *domain.RemoteError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &remote):
		return describeRemote(remote)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled or timed out."
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "That item no longer exists. Reload the project and try again."
	default:
		return "Something went wrong: " + err.Error()
	}
}

func describeRemote(err *domain.RemoteError) string {
	switch {
	case err.StatusCode == 0:
		return "Could not reach the server. Check your connection and try again."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Your session has expired. Sign in again."
	case errors.Is(err, domain.ErrForbidden):
		return "You do not have access to this project."
	case errors.Is(err, domain.ErrNotFound):
		return "That item no longer exists on the server. Reload the project and try again."
	case err.Detail != "":
		return "The server rejected the request: " + err.Detail
	default:
		return fmt.Sprintf("The server answered with status %d.", err.StatusCode)
	}
}
