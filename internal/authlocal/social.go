package authlocal

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/pkg/auth"
)

// SignInWithGoogle verifies a Google ID token and signs the user in,
// creating the account on first use.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (auth.SocialSession, error) {
	if !s.cfg.Google.Enabled() {
		return auth.SocialSession{}, auth.Normalize(auth.NewError(auth.CodeDeveloperError, ""), auth.FallbackGoogle)
	}
	if strings.TrimSpace(idToken) == "" {
		return auth.SocialSession{}, auth.NewError(auth.CodeGoogleSignInFailed, auth.MessageGoogleNoToken)
	}
	claims, err := s.verifyIdentity(s.cfg.Google, idToken)
	if err != nil {
		s.logger.Info("auth: google token rejected", zap.Error(err))
		return auth.SocialSession{}, auth.ErrInvalidToken
	}
	return s.social(ctx, auth.ProviderGoogle, claims)
}

// SignInWithApple verifies an Apple identity token. Apple sign-in is
// unsupported unless a verification key is configured.
func (s *Service) SignInWithApple(ctx context.Context, identityToken string) (auth.SocialSession, error) {
	if !s.cfg.Apple.Enabled() {
		return auth.SocialSession{}, auth.NewError(auth.CodeAppleNotSupported, auth.MessageAppleNotSupported)
	}
	if strings.TrimSpace(identityToken) == "" {
		return auth.SocialSession{}, auth.NewError(auth.CodeAppleSignInFailed, auth.MessageAppleNoToken)
	}
	claims, err := s.verifyIdentity(s.cfg.Apple, identityToken)
	if err != nil {
		s.logger.Info("auth: apple token rejected", zap.Error(err))
		return auth.SocialSession{}, auth.ErrInvalidToken
	}
	return s.social(ctx, auth.ProviderApple, claims)
}

func (s *Service) social(ctx context.Context, provider auth.Provider, claims *identityClaims) (auth.SocialSession, error) {
	fallback := auth.FallbackGoogle
	if provider == auth.ProviderApple {
		fallback = auth.FallbackApple
	}

	account, err := s.accounts.AccountBySubject(ctx, provider, claims.Subject)
	switch {
	case err == nil:
		s.touch(ctx, account.UID)
		session, err := s.session(account)
		if err != nil {
			return auth.SocialSession{}, err
		}
		s.logger.Info("auth: signed in", zap.String("uid", account.UID), zap.String("provider", string(provider)))
		return auth.SocialSession{Session: session}, nil
	case !errors.Is(err, auth.ErrUserNotFound):
		return auth.SocialSession{}, auth.Normalize(err, fallback)
	}

	now := s.now()
	account = auth.Account{
		UID:          s.newID(),
		Email:        strings.TrimSpace(claims.Email),
		DisplayName:  claims.Name,
		Provider:     provider,
		Subject:      claims.Subject,
		CreatedAt:    now,
		LastSignInAt: now,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyInUse) {
			return auth.SocialSession{}, auth.ErrAccountExists
		}
		return auth.SocialSession{}, auth.Normalize(err, fallback)
	}
	session, err := s.session(account)
	if err != nil {
		return auth.SocialSession{}, err
	}
	s.logger.Info("auth: signed up", zap.String("uid", account.UID), zap.String("provider", string(provider)))
	return auth.SocialSession{Session: session, IsNewUser: true}, nil
}
