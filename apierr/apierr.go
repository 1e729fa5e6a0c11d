// Package apierr carries the HTTP error envelope used by every handler:
//
//	{"error": "<human message>", "code": "<machine code>"}
package apierr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeBadRequest           = "bad_request"
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeMissingAuthorization = "missing_authorization"
	CodeInvalidAuthorization = "invalid_authorization"
	CodeInvalidToken         = "invalid_token"
	CodeConflict             = "conflict"
	CodeNotFound             = "not_found"
	CodeInternal             = "internal"
	CodeRateLimited          = "rate_limited"
)

// Error is an error that knows its HTTP status and machine code.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Body is the JSON envelope.
type Body struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (e *Error) Body() Body { return Body{Error: e.Message, Code: e.Code} }

func New(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

func BadRequest(err error) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, err.Error())
}

func InvalidRequest(msg string) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, msg)
}

func InvalidCredentials() *Error {
	return New(http.StatusUnauthorized, CodeInvalidCredentials, "invalid credentials")
}

func MissingAuthorization() *Error {
	return New(http.StatusUnauthorized, CodeMissingAuthorization, "missing Authorization header")
}

func InvalidAuthorization() *Error {
	return New(http.StatusUnauthorized, CodeInvalidAuthorization, "expected Bearer token")
}

func InvalidToken(msg string) *Error {
	return New(http.StatusUnauthorized, CodeInvalidToken, msg)
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, CodeConflict, msg)
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, msg)
}

// Internal exposes the underlying error text, matching the rest of the API.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err.Error())
}

func TooManyRequests() *Error {
	return New(http.StatusTooManyRequests, CodeRateLimited, "too many requests")
}

// From classifies err: *Error passes through, anything else is internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Abort renders err and stops the gin chain. The error is also attached to
// the context so the request logger can report it.
func Abort(c *gin.Context, err error) {
	e := From(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Status, e.Body())
}
