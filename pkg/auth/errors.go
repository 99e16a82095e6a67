package auth

import (
	"context"
	"errors"
	"strings"
)

// Error codes.
const (
	CodeBackendNotInitialized = "backend-not-initialized"
	CodeUnknown               = "unknown-error"
	CodeEmailAlreadyInUse     = "auth/email-already-in-use"
	CodeInvalidEmail          = "auth/invalid-email"
	CodeWeakPassword          = "auth/weak-password"
	CodeUserNotFound          = "auth/user-not-found"
	CodeWrongPassword         = "auth/wrong-password"
	CodeInvalidToken          = "auth/invalid-token"
	CodeExpiredToken          = "auth/expired-action-code"
	CodeAccountExists         = "auth/account-exists-with-different-credential"
	CodeGoogleSignInFailed    = "google-signin-failed"
	CodeAppleNotSupported     = "apple-signin-not-supported"
	CodeAppleSignInFailed     = "apple-signin-failed"
	CodeDeveloperError        = "DEVELOPER_ERROR"
)

// Messages.
const (
	MessageBackendNotInitialized = "Backend is not properly initialized"
	MessageGoogleNoToken         = "Google Sign-In failed - no ID token received"
	MessageAppleNotSupported     = "Apple Sign-In is not supported on this device"
	MessageAppleNoToken          = "Apple Sign-In failed - no identity token received"
	MessageGoogleConfiguration   = "Google Sign-In configuration error. Please check your Google Cloud Console settings and SHA-1 fingerprint."
	FallbackSignUp               = "An unknown error occurred during sign up"
	FallbackSignIn               = "An unknown error occurred during sign in"
	FallbackPasswordReset        = "An unknown error occurred while sending password reset email"
	FallbackGoogle               = "An unknown error occurred during Google Sign-In"
	FallbackApple                = "An unknown error occurred during Apple Sign-In"
)

// Error is a coded account failure. Message is shown to the user as is.
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

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || other == nil || e == nil {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

// NewError builds a coded error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Sentinels for errors.Is comparisons.
var (
	ErrBackendNotInitialized = NewError(CodeBackendNotInitialized, MessageBackendNotInitialized)
	ErrEmailAlreadyInUse     = NewError(CodeEmailAlreadyInUse, "The email address is already in use by another account.")
	ErrUserNotFound          = NewError(CodeUserNotFound, "There is no user record corresponding to this identifier.")
	ErrWrongPassword         = NewError(CodeWrongPassword, "The password is invalid or the user does not have a password.")
	ErrInvalidToken          = NewError(CodeInvalidToken, "The supplied token is invalid or has expired.")
	ErrExpiredActionCode     = NewError(CodeExpiredToken, "The action code has expired.")
	ErrAccountExists         = NewError(CodeAccountExists, "An account already exists with the same email address but different sign-in credentials.")
)

// Normalize converts err into a coded *Error. Uncoded errors become
// CodeUnknown keeping their text, or fallback when empty. A
// CodeDeveloperError from an identity provider gets the configuration hint.
func Normalize(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) && coded != nil && coded.Code != "" {
		if coded.Code == CodeDeveloperError {
			return &Error{Code: coded.Code, Message: MessageGoogleConfiguration, Err: coded}
		}
		return coded
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeUnknown, Message: err.Error(), Err: err}
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fallback
	}
	return &Error{Code: CodeUnknown, Message: msg, Err: err}
}

// CodeOf returns the code carried by err.
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
