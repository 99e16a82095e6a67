package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/pkg/store"
)

// Onboarding wraps a Service and creates the profile document for every new
// account.
//
// After an email sign-up the profile is created immediately and a failure is
// returned alongside the session, since the account itself exists. After a
// social sign-in that created the account, a profile failure is only logged.
type Onboarding struct {
	Service
	Profiles store.ProfileStore
	Logger   *zap.Logger
}

var _ Service = (*Onboarding)(nil)

// NewOnboarding decorates svc.
func NewOnboarding(svc Service, profiles store.ProfileStore, logger *zap.Logger) *Onboarding {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Onboarding{Service: svc, Profiles: profiles, Logger: logger}
}

func (o *Onboarding) SignUp(ctx context.Context, email, password string) (Session, error) {
	session, err := o.Service.SignUp(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if o.Profiles == nil {
		return session, nil
	}
	if err := o.Profiles.CreateProfile(ctx, session.UID, session.Email); err != nil {
		o.Logger.Error("auth: create profile after sign up failed",
			zap.String("uid", session.UID),
			zap.Error(err),
		)
		return session, store.Normalize(err, store.FallbackCreateProfile)
	}
	return session, nil
}

func (o *Onboarding) SignInWithGoogle(ctx context.Context, idToken string) (SocialSession, error) {
	session, err := o.Service.SignInWithGoogle(ctx, idToken)
	if err != nil {
		return SocialSession{}, err
	}
	o.ensureProfile(ctx, session)
	return session, nil
}

func (o *Onboarding) SignInWithApple(ctx context.Context, identityToken string) (SocialSession, error) {
	session, err := o.Service.SignInWithApple(ctx, identityToken)
	if err != nil {
		return SocialSession{}, err
	}
	o.ensureProfile(ctx, session)
	return session, nil
}

func (o *Onboarding) ensureProfile(ctx context.Context, session SocialSession) {
	if !session.IsNewUser || session.Email == "" || o.Profiles == nil {
		return
	}
	if err := o.Profiles.CreateProfile(ctx, session.UID, session.Email); err != nil {
		o.Logger.Warn("auth: failed to create user profile",
			zap.String("uid", session.UID),
			zap.Error(err),
		)
	}
}
