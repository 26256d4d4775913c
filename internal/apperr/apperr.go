// Package apperr converts failures at call boundaries into the error kinds
// the dashboard surfaces to staff. Raw transport errors are kept in Err for
// logging and never shown.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Auth           Kind = "auth"
	Connectivity   Kind = "connectivity"
	Fetch          Kind = "fetch"
	Action         Kind = "action"
	SessionInvalid Kind = "session_invalid"
	Invalid        Kind = "invalid"
	NotFound       Kind = "not_found"
	Conflict       Kind = "conflict"
	Internal       Kind = "internal"
)

const genericMessage = "unexpected error"

// AppError is an error with a message that is safe to show to staff.
type AppError struct {
	Kind      Kind
	PublicMsg string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.PublicMsg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
}

func (e *AppError) Unwrap() error { return e.Err }

// AuthErr is a login rejected by the server. msg is passed through verbatim.
func AuthErr(msg string, err error) *AppError {
	return &AppError{Kind: Auth, PublicMsg: msg, Err: err}
}

// ConnectivityErr is a request that never got a response.
func ConnectivityErr(msg string, err error) *AppError {
	return &AppError{Kind: Connectivity, PublicMsg: msg, Err: err}
}

// FetchErr is any failed read (orders, branches, inventory, products).
func FetchErr(msg string, err error) *AppError {
	return &AppError{Kind: Fetch, PublicMsg: msg, Err: err}
}

// ActionErr is a failed accept/reject/ready/cancel.
func ActionErr(msg string, err error) *AppError {
	return &AppError{Kind: Action, PublicMsg: msg, Err: err}
}

func SessionInvalidErr(msg string) *AppError {
	return &AppError{Kind: SessionInvalid, PublicMsg: msg}
}

func InvalidErr(msg string) *AppError {
	return &AppError{Kind: Invalid, PublicMsg: msg}
}

func NotFoundErr(msg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: msg}
}

func ConflictErr(msg string) *AppError {
	return &AppError{Kind: Conflict, PublicMsg: msg}
}

// Wrap hides an internal error behind the generic message.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Kind: Internal, PublicMsg: genericMessage, Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err is an AppError of kind k.
func Is(err error, k Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == k
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Invalid:
			return http.StatusBadRequest
		case Auth, SessionInvalid:
			return http.StatusUnauthorized
		case NotFound:
			return http.StatusNotFound
		case Conflict:
			return http.StatusConflict
		case Connectivity, Fetch, Action:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return genericMessage
}
