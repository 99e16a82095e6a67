package store

import (
	"context"
	"errors"
	"strings"
)

// Error codes shared by every store implementation.
const (
	CodeBackendNotInitialized = "backend-not-initialized"
	CodeUnknown               = "unknown-error"
	CodeVehicleNotFound       = "vehicle-not-found"
	CodeInvalidArgument       = "invalid-argument"
	CodePermissionDenied      = "permission-denied"
	CodeCancelled             = "cancelled"
	CodeProfileNotFound       = "profile-not-found"
)

// Fallback messages used when an underlying error carries no text.
const (
	MessageBackendNotInitialized = "Backend is not properly initialized"
	MessageVehicleNotFound       = "Vehicle not found"
	MessageProfileNotFound       = "Profile not found"
	FallbackList                 = "An unknown error occurred while fetching vehicles"
	FallbackGet                  = "An unknown error occurred while fetching vehicle"
	FallbackCreate               = "An unknown error occurred while creating vehicle"
	FallbackUpdate               = "An unknown error occurred while updating vehicle"
	FallbackDelete               = "An unknown error occurred while deleting vehicle"
	FallbackCreateProfile        = "An unknown error occurred while creating user profile"
	FallbackGetProfile           = "An unknown error occurred while fetching user profile"
)

// Error is the coded failure returned by store operations. Message is meant
// to be shown to the user as is.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error by code so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || other == nil || e == nil {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrBackendNotInitialized = &Error{Code: CodeBackendNotInitialized, Message: MessageBackendNotInitialized}
	ErrNotFound              = &Error{Code: CodeVehicleNotFound, Message: MessageVehicleNotFound}
)

// NewError builds a coded error.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// NotFound returns the vehicle-not-found error.
func NotFound() *Error {
	return &Error{Code: CodeVehicleNotFound, Message: MessageVehicleNotFound}
}

// ProfileNotFound returns the missing-profile error.
func ProfileNotFound() *Error {
	return &Error{Code: CodeProfileNotFound, Message: MessageProfileNotFound}
}

// BackendNotInitialized returns the configuration error.
func BackendNotInitialized() *Error {
	return &Error{Code: CodeBackendNotInitialized, Message: MessageBackendNotInitialized}
}

// Normalize converts err into a *Error. Coded errors pass through; anything
// else becomes CodeUnknown keeping its message, or fallback when it has none.
func Normalize(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) && coded != nil && coded.Code != "" {
		return coded
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeCancelled, Message: err.Error(), Err: err}
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fallback
	}
	return &Error{Code: CodeUnknown, Message: msg, Err: err}
}

// CodeOf returns the code carried by err, CodeUnknown for uncoded errors and
// "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) && coded != nil && coded.Code != "" {
		return coded.Code
	}
	return CodeUnknown
}
