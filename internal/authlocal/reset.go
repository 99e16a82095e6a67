package authlocal

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-trackjournal/internal/mail"
	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/validation"
)

// SendPasswordReset mails a single-use reset link to the account owner.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if msg := validation.Email(email); msg != "" {
		return auth.NewError(auth.CodeInvalidEmail, msg)
	}
	account, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		return auth.Normalize(err, auth.FallbackPasswordReset)
	}
	token, _, err := s.issue(account, purposeReset, s.cfg.ResetTTL, fingerprint(account.PasswordHash))
	if err != nil {
		return auth.Normalize(err, auth.FallbackPasswordReset)
	}
	if err := s.mailer.Send(ctx, mail.PasswordReset(account.Email, s.resetLink(token))); err != nil {
		s.logger.Error("auth: password reset mail failed", zap.String("uid", account.UID), zap.Error(err))
		return auth.Normalize(err, auth.FallbackPasswordReset)
	}
	s.logger.Info("auth: password reset sent", zap.String("uid", account.UID))
	return nil
}

// ConfirmPasswordReset sets a new password. A token stops working once the
// password it was issued for has changed.
func (s *Service) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.parse(resetToken, purposeReset)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.ErrExpiredActionCode
		}
		return auth.ErrInvalidToken
	}
	if msg := validation.Password(newPassword); msg != "" {
		return auth.NewError(auth.CodeWeakPassword, msg)
	}
	account, err := s.accounts.AccountByUID(ctx, claims.Subject)
	if err != nil {
		return auth.Normalize(err, auth.FallbackPasswordReset)
	}
	if claims.Fingerprint != fingerprint(account.PasswordHash) {
		return auth.ErrInvalidToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return auth.Normalize(err, auth.FallbackPasswordReset)
	}
	if err := s.accounts.UpdatePassword(ctx, account.UID, string(hash)); err != nil {
		return auth.Normalize(err, auth.FallbackPasswordReset)
	}
	s.logger.Info("auth: password reset completed", zap.String("uid", account.UID))
	return nil
}

func (s *Service) resetLink(token string) string {
	base := s.cfg.ResetURL
	if base == "" {
		base = "/reset-password"
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// fingerprint is the tail of the bcrypt hash, which changes with every new
// salt.
func fingerprint(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[len(hash)-12:]
}
