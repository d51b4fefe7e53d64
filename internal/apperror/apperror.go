package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes a remote call can resolve to.
// Every async operation in the client must end in one of these (or succeed);
// nothing else is allowed to propagate past a controller boundary.
var (
	ErrTransport  = errors.New("transport error")
	ErrAuth       = errors.New("authentication failed")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrExport     = errors.New("export failed")
)

// AppError carries a failure class plus the user-facing message list.
// The server may report a single message or several; either way the client
// renders Messages as a list, so a single message is stored as a one-element
// slice.
type AppError struct {
	Err      error    // sentinel identifying the failure class
	Message  string   // primary human-readable message
	Messages []string // full message list (always at least one entry)
	Status   int      // HTTP status that produced this error, 0 for transport failures
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Transport wraps a network-level failure (no HTTP response was received).
func Transport(err error) *AppError {
	msg := "Unable to reach the server."
	return &AppError{
		Err:      fmt.Errorf("%w: %w", ErrTransport, err),
		Message:  msg,
		Messages: []string{msg},
	}
}

// Auth reports an authentication failure (401 or identity resolution error).
func Auth(status int) *AppError {
	msg := "Your session has expired. Please log in again."
	return &AppError{
		Err:      ErrAuth,
		Message:  msg,
		Messages: []string{msg},
		Status:   status,
	}
}

// Validation reports one or more rejected fields. The messages are surfaced
// verbatim, whether they came from the client-side fast path or the server.
func Validation(messages ...string) *AppError {
	if len(messages) == 0 {
		messages = []string{"Something went wrong."}
	}
	return &AppError{
		Err:      ErrValidation,
		Message:  messages[0],
		Messages: messages,
	}
}

// ValidationStatus is Validation with the originating HTTP status attached.
func ValidationStatus(status int, messages ...string) *AppError {
	e := Validation(messages...)
	e.Status = status
	return e
}

func NotFound(resource, id string) *AppError {
	msg := fmt.Sprintf("%s not found with id %s", resource, id)
	return &AppError{
		Err:      ErrNotFound,
		Message:  msg,
		Messages: []string{msg},
		Status:   404,
	}
}

// Export reports a failed PDF export. The export dialog stays open and the
// user may retry, so the message must be self-contained.
func Export(err error) *AppError {
	msg := "Unable to export PDF. Please try again."
	return &AppError{
		Err:      fmt.Errorf("%w: %w", ErrExport, err),
		Message:  msg,
		Messages: []string{msg},
	}
}

// MessagesOf extracts the user-facing message list from any error.
// Unknown errors collapse to a single generic entry so the UI never has to
// render a raw Go error.
func MessagesOf(err error) []string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Messages
	}
	return []string{"Something went wrong."}
}
