package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures so the transport layer can choose a status code.
type Kind uint8

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientFunds
	KindGenerationFailed
	KindUnconfigured
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindGenerationFailed:
		return "generation_failed"
	case KindUnconfigured:
		return "unconfigured"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code returned to API clients.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a message that is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errorf builds a classified error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrUserNotFound is returned when no account exists for a user id.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "User not found"}
	// ErrQuizNotFound is returned when a quiz id is unknown.
	ErrQuizNotFound = &Error{Kind: KindNotFound, Message: "Quiz not found"}
	// ErrInsufficientPoints is returned when a spend exceeds the available points.
	ErrInsufficientPoints = &Error{Kind: KindInsufficientFunds, Message: "Not enough points"}
	// ErrUnauthorized is returned for missing, malformed, expired or revoked credentials.
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "Invalid credentials"}
	// ErrEmailTaken is returned when signing up with an email that already has an account.
	ErrEmailTaken = &Error{Kind: KindBadRequest, Message: "Email already registered"}
	// ErrConflict marks a retryable store conflict such as a serialization failure.
	ErrConflict = &Error{Kind: KindInternal, Message: "concurrent update conflict"}
	// ErrGeneratorUnconfigured is returned when the AI key is absent.
	ErrGeneratorUnconfigured = &Error{Kind: KindUnconfigured, Message: "AI API key not configured"}
)

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-facing message for err. Internal failures are masked.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}
