// Package apperr defines the error taxonomy shared by the route engine,
// its adapters, and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput indicates a caller-supplied value was rejected (e.g. empty address).
	KindInvalidInput
	// KindResolutionFailed indicates the geocoder had no usable match.
	KindResolutionFailed
	// KindProviderUnavailable covers network failures, timeouts and non-2xx provider responses.
	KindProviderUnavailable
	// KindProviderContractViolation indicates a provider payload of unexpected shape.
	KindProviderContractViolation
	// KindMalformedGeometry indicates an undecodable polyline.
	KindMalformedGeometry
	// KindNotFound indicates an unknown share id.
	KindNotFound
	// KindNotReady indicates publish was requested before a search reached Ready.
	KindNotReady
	// KindSuperseded indicates a search was replaced by a newer one in the same session.
	KindSuperseded
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindResolutionFailed:
		return "resolution_failed"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindProviderContractViolation:
		return "provider_contract_violation"
	case KindMalformedGeometry:
		return "malformed_geometry"
	case KindNotFound:
		return "not_found"
	case KindNotReady:
		return "not_ready"
	case KindSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Error is a typed failure. Op names the operation that failed, Err is the
// optional cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind onto a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindResolutionFailed:
		return http.StatusUnprocessableEntity
	// Geometry only ever arrives from the routing provider.
	case KindProviderUnavailable, KindProviderContractViolation, KindMalformedGeometry:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	case KindNotReady, KindSuperseded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WithOp sets the failing operation and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

func ResolutionFailed(reason string) *Error {
	return New(KindResolutionFailed, reason)
}

func ProviderUnavailable(message string, err error) *Error {
	return Wrap(KindProviderUnavailable, message, err)
}

func ProviderContractViolation(message string, err error) *Error {
	return Wrap(KindProviderContractViolation, message, err)
}

func MalformedGeometry(message string) *Error {
	return New(KindMalformedGeometry, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// GetKind returns the kind of the first *Error in err's chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return err != nil && GetKind(err) == kind
}

// Status returns the HTTP status for err, 500 when it is untyped.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
