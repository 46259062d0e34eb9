package chat

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rcliao/buddy/internal/llm"
)

// Kind classifies a chat failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConfiguration
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindProvider:
		return "provider"
	default:
		return "internal"
	}
}

// Error is a failed reply. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// classify maps a completion failure onto an Error.
func classify(err error) *Error {
	var perr *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return &Error{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: "API key not configured", Err: err}
	case errors.As(err, &perr):
		return &Error{Kind: KindProvider, Status: perr.HTTPStatus(), Message: "API Error: " + perr.Message, Err: err}
	default:
		return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
	}
}

// StatusOf returns the HTTP status for err: the Error's status, else 500.
func StatusOf(err error) int {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Status
	}
	return http.StatusInternalServerError
}
