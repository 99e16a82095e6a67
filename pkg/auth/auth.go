// Package auth defines the account contracts used by the garage: email and
// password accounts, password resets and Google/Apple identity sign-in.
//
// Service implementations return *Error values carrying a stable code and a
// user-facing message. Onboarding decorates a Service so every new account
// gets a profile document.
package auth

import (
	"context"
	"time"
)

// User identifies a signed-in account.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Session is a signed-in user plus the bearer token that authenticates it.
type Session struct {
	User
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SocialSession is returned by identity-provider sign-in. IsNewUser is true
// when the account was created by this sign-in.
type SocialSession struct {
	Session
	IsNewUser bool `json:"isNewUser"`
}

// Service is the account backend.
type Service interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignInWithGoogle(ctx context.Context, idToken string) (SocialSession, error)
	SignInWithApple(ctx context.Context, identityToken string) (SocialSession, error)
}

// TokenVerifier resolves a bearer token issued by a Service.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (User, error)
}

// PasswordResetter completes a reset started by SendPasswordReset.
type PasswordResetter interface {
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
}

// Provider names an identity source.
type Provider string

const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
	ProviderApple    Provider = "apple"
)

// Account is the stored form of a user.
type Account struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	Provider     Provider
	Subject      string
	CreatedAt    time.Time
	LastSignInAt time.Time
}

// AccountStore persists accounts for self-hosted Service implementations.
// Lookups return an *Error with CodeUserNotFound when nothing matches and
// CreateAccount returns CodeEmailAlreadyInUse for a taken email.
type AccountStore interface {
	CreateAccount(ctx context.Context, account Account) error
	AccountByEmail(ctx context.Context, email string) (Account, error)
	AccountBySubject(ctx context.Context, provider Provider, subject string) (Account, error)
	AccountByUID(ctx context.Context, uid string) (Account, error)
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
	TouchSignIn(ctx context.Context, uid string, at time.Time) error
}
