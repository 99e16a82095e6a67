// Package authlocal is the self-hosted account backend: bcrypt password
// hashes, HS256 session tokens, mailed password resets and verification of
// Google and Apple identity tokens.
package authlocal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-trackjournal/internal/mail"
	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/validation"
)

// IdentityProvider holds the verification settings for a social provider.
// Key is either an HMAC secret or a PEM encoded RSA public key.
type IdentityProvider struct {
	Audience string
	Issuers  []string
	Key      string
}

// Enabled reports whether tokens from the provider can be verified.
func (p IdentityProvider) Enabled() bool { return strings.TrimSpace(p.Key) != "" }

// Config configures a Service.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TokenTTL time.Duration
	ResetTTL time.Duration
	// ResetURL receives the reset token as the "token" query parameter.
	ResetURL   string
	BcryptCost int
	Google     IdentityProvider
	Apple      IdentityProvider
}

const minSecretLen = 16

// Service implements auth.Service, auth.TokenVerifier and
// auth.PasswordResetter.
type Service struct {
	cfg      Config
	accounts auth.AccountStore
	mailer   mail.Mailer
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

var (
	_ auth.Service          = (*Service)(nil)
	_ auth.TokenVerifier    = (*Service)(nil)
	_ auth.PasswordResetter = (*Service)(nil)
)

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New validates cfg and returns a Service.
func New(cfg Config, accounts auth.AccountStore, mailer mail.Mailer, opts ...Option) (*Service, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("authlocal: secret must be at least %d bytes", minSecretLen)
	}
	if accounts == nil {
		return nil, errors.New("authlocal: account store is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if len(cfg.Google.Issuers) == 0 {
		cfg.Google.Issuers = []string{"accounts.google.com", "https://accounts.google.com"}
	}
	if len(cfg.Apple.Issuers) == 0 {
		cfg.Apple.Issuers = []string{"https://appleid.apple.com"}
	}
	s := &Service{
		cfg:      cfg,
		accounts: accounts,
		mailer:   mailer,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.mailer == nil {
		s.mailer = mail.LogMailer{Logger: s.logger}
	}
	return s, nil
}

func (s *Service) SignUp(ctx context.Context, email, password string) (auth.Session, error) {
	email = strings.TrimSpace(email)
	if msg := validation.Email(email); msg != "" {
		return auth.Session{}, auth.NewError(auth.CodeInvalidEmail, msg)
	}
	if msg := validation.Password(password); msg != "" {
		return auth.Session{}, auth.NewError(auth.CodeWeakPassword, msg)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return auth.Session{}, auth.Normalize(err, auth.FallbackSignUp)
	}
	now := s.now()
	account := auth.Account{
		UID:          s.newID(),
		Email:        email,
		PasswordHash: string(hash),
		Provider:     auth.ProviderPassword,
		CreatedAt:    now,
		LastSignInAt: now,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		s.logger.Info("auth: sign up rejected", zap.String("code", auth.CodeOf(err)))
		return auth.Session{}, auth.Normalize(err, auth.FallbackSignUp)
	}
	s.logger.Info("auth: signed up", zap.String("uid", account.UID))
	return s.session(account)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	email = strings.TrimSpace(email)
	if msg := validation.Email(email); msg != "" {
		return auth.Session{}, auth.NewError(auth.CodeInvalidEmail, msg)
	}
	account, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		return auth.Session{}, auth.Normalize(err, auth.FallbackSignIn)
	}
	if account.PasswordHash == "" {
		return auth.Session{}, auth.ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Info("auth: wrong password", zap.String("uid", account.UID))
			return auth.Session{}, auth.ErrWrongPassword
		}
		return auth.Session{}, auth.Normalize(err, auth.FallbackSignIn)
	}
	s.touch(ctx, account.UID)
	s.logger.Info("auth: signed in", zap.String("uid", account.UID))
	return s.session(account)
}

// VerifyToken resolves a session token to its user.
func (s *Service) VerifyToken(ctx context.Context, token string) (auth.User, error) {
	claims, err := s.parse(token, purposeSession)
	if err != nil {
		return auth.User{}, auth.ErrInvalidToken
	}
	account, err := s.accounts.AccountByUID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.User{}, auth.ErrInvalidToken
		}
		return auth.User{}, auth.Normalize(err, auth.FallbackSignIn)
	}
	return userOf(account), nil
}

func (s *Service) session(account auth.Account) (auth.Session, error) {
	token, expires, err := s.issue(account, purposeSession, s.cfg.TokenTTL, "")
	if err != nil {
		return auth.Session{}, auth.Normalize(err, auth.FallbackSignIn)
	}
	return auth.Session{User: userOf(account), Token: token, ExpiresAt: expires}, nil
}

func (s *Service) touch(ctx context.Context, uid string) {
	if err := s.accounts.TouchSignIn(ctx, uid, s.now()); err != nil {
		s.logger.Warn("auth: record sign in failed", zap.String("uid", uid), zap.Error(err))
	}
}

func userOf(a auth.Account) auth.User {
	return auth.User{UID: a.UID, Email: a.Email, DisplayName: a.DisplayName}
}
