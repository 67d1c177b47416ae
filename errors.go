package realestates

import (
	"fmt"
	"net/http"

	"github.com/friendsofgo/errors"
)

// Error codes returned to clients.
const (
	CodeBadRequest          = "bad-request"
	CodeUnauthorized        = "unauthorized"
	CodeNotFound            = "not-found"
	CodeUnprocessableEntity = "unprocessable-entity"
	CodeTooManyRequests     = "too-many-requests"
	CodeServerError         = "server-error"
)

// Error is a client-facing failure with a stable code and an HTTP status.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func newError(status int, code, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports a malformed or out-of-policy request.
func BadRequest(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeBadRequest, format, args...)
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(format string, args ...any) *Error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, format, args...)
}

// NotFound reports an id that does not resolve to a resource the caller may
// see. Absence and denial are deliberately indistinguishable.
func NotFound(format string, args ...any) *Error {
	return newError(http.StatusNotFound, CodeNotFound, format, args...)
}

// UnprocessableEntity reports a payload that parses but has the wrong shape.
func UnprocessableEntity(format string, args ...any) *Error {
	return newError(http.StatusUnprocessableEntity, CodeUnprocessableEntity, format, args...)
}

// TooManyRequests reports a throttled action.
func TooManyRequests(format string, args ...any) *Error {
	return newError(http.StatusTooManyRequests, CodeTooManyRequests, format, args...)
}

// ServerError is the generic failure shown for unexpected errors.
func ServerError() *Error {
	return newError(http.StatusInternalServerError, CodeServerError, "internal server error")
}

// AsError returns the *Error in err's chain. Any other error becomes a
// ServerError, and the second result is false so callers can log it.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return ServerError(), false
}

// IsNotFound reports whether err is a NotFound error or ErrNoRecord.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNoRecord) {
		return true
	}
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNotFound
}
