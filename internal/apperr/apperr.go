package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers that need to map it onto an
// HTTP response without inspecting message text.
type Kind int

const (
	// BadRequest means the input was missing or malformed.
	BadRequest Kind = iota + 1
	// NotFound means a referenced entity does not exist or is not
	// visible to the requesting user.
	NotFound
	// Conflict means the request was valid but violates a business
	// invariant right now (e.g. insufficient stock).
	Conflict
	// Internal means an underlying store or collaborator failed.
	Internal
)

// Error is a classified service error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a client-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error as Internal. The message is what
// the client sees; the wrapped error is for logs only.
func Wrap(err error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

// KindOf extracts the Kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Status maps a Kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
