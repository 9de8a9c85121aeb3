package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, "validation_error", errors.New(msg))
}

func Conflict(code, msg string) *Error {
	return New(http.StatusConflict, code, errors.New(msg))
}

func NotFound(code, msg string) *Error {
	return New(http.StatusNotFound, code, errors.New(msg))
}

func Unauthorized(code, msg string) *Error {
	return New(http.StatusUnauthorized, code, errors.New(msg))
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}
