package lookup

import (
	"errors"
	"fmt"
	"strings"

	"snpscope/src/sanitize"
)

var (
	ErrValidation = errors.New("invalid identifier")
	ErrNotFound   = errors.New("identifier not found")
	ErrTransport  = errors.New("lookup service unreachable")
	ErrService    = errors.New("lookup service error")
)

// Kind classifies a lookup failure.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindTransport
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindTransport:
		return ErrTransport
	default:
		return ErrService
	}
}

// GenericFailure is reported when the service fails without a message.
const GenericFailure = "lookup service reported failure"

// Error is returned by every Client operation.
// Message is what the user sees; for service failures it is the service's
// message verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of err, or KindService when err did not come from
// this package.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindService
}

// classifyFailure turns a failure envelope into a typed error. allowNotFound
// is set only for single lookups.
func classifyFailure(message string, allowNotFound bool) *Error {
	message = sanitize.Message(message)
	if message == "" {
		return newError(KindService, GenericFailure, nil)
	}

	lower := strings.ToLower(message)
	switch {
	case allowNotFound && strings.Contains(lower, "not found"):
		return newError(KindNotFound, message, nil)
	case strings.Contains(lower, "missing"),
		strings.Contains(lower, "invalid"),
		strings.Contains(lower, "no rsids provided"):
		return newError(KindValidation, message, nil)
	default:
		return newError(KindService, message, nil)
	}
}

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts lookup errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrValidation):
		return &UserError{
			Message: "Invalid RSID",
			Hint:    "RSIDs look like rs53576; the \"rs\" prefix is optional.\n  - Batch input is comma separated: rs1,rs2,rs3",
			Err:     err,
		}
	case errors.Is(err, ErrNotFound):
		return &UserError{
			Message: "RSID not found in the loaded dataset",
			Hint:    "Try `snpscope suggest <prefix>` to see identifiers that are present.",
			Err:     err,
		}
	case errors.Is(err, ErrTransport):
		return &UserError{
			Message: "Could not reach the lookup service",
			Hint:    "Check that the service is running and SNPSCOPE_SERVICE_URL points at it.",
			Err:     err,
		}
	case errors.Is(err, ErrService):
		var le *Error
		if errors.As(err, &le) && strings.Contains(strings.ToLower(le.Message), "no dna data") {
			return &UserError{
				Message: "No dataset loaded",
				Hint:    "Upload a genome file to the lookup service before searching.",
				Err:     err,
			}
		}
	}

	return err
}
