// Package apperr carries the error taxonomy shared by every service. Handlers
// map codes to HTTP statuses; services return these instead of raw errors so
// the caller always gets a distinguishable reason.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeValidation        Code = "VALIDATION"
	CodeInvalidExpiration Code = "INVALID_EXPIRATION"
	CodeNotAuthorized     Code = "NOT_AUTHORIZED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeSyncFailed        Code = "SYNC_FAILED"
	CodeInternal          Code = "INTERNAL"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches two AppErrors by code and message so sentinel errors work with
// errors.Is even after wrapping a cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(msg string) error    { return New(CodeValidation, msg) }
func NotAuthorized(msg string) error { return New(CodeNotAuthorized, msg) }
func NotFound(msg string) error      { return New(CodeNotFound, msg) }
func Internal(msg string) error      { return New(CodeInternal, msg) }

// CodeOf extracts the taxonomy code, CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}
