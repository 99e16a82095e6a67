package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-trackjournal/pkg/store"
)

type stubService struct {
	Service
	session Session
	social  SocialSession
	err     error
}

func (s stubService) SignUp(context.Context, string, string) (Session, error) {
	return s.session, s.err
}

func (s stubService) SignInWithGoogle(context.Context, string) (SocialSession, error) {
	return s.social, s.err
}

func (s stubService) SignInWithApple(context.Context, string) (SocialSession, error) {
	return s.social, s.err
}

type profileCall struct{ UID, Email string }

type stubProfiles struct {
	store.ProfileStore
	calls []profileCall
	err   error
}

func (p *stubProfiles) CreateProfile(_ context.Context, uid, email string) error {
	p.calls = append(p.calls, profileCall{uid, email})
	return p.err
}

func TestOnboarding_SignUpCreatesProfile(t *testing.T) {
	profiles := &stubProfiles{}
	svc := stubService{session: Session{User: User{UID: "u1", Email: "a@b.co"}, Token: "t"}}
	o := NewOnboarding(svc, profiles, nil)

	session, err := o.SignUp(context.Background(), "a@b.co", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if session.UID != "u1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if diff := cmp.Diff([]profileCall{{"u1", "a@b.co"}}, profiles.calls); diff != "" {
		t.Fatalf("profile calls mismatch (-want +got):\n%s", diff)
	}
}

func TestOnboarding_SignUpProfileFailureIsReported(t *testing.T) {
	profiles := &stubProfiles{err: errors.New("")}
	svc := stubService{session: Session{User: User{UID: "u1", Email: "a@b.co"}}}
	o := NewOnboarding(svc, profiles, nil)

	session, err := o.SignUp(context.Background(), "a@b.co", "secret1")
	if err == nil {
		t.Fatalf("expected profile error")
	}
	if err.Error() != store.FallbackCreateProfile {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if session.UID != "u1" {
		t.Fatalf("session must be returned with the profile error")
	}
}

func TestOnboarding_SignUpErrorSkipsProfile(t *testing.T) {
	profiles := &stubProfiles{}
	o := NewOnboarding(stubService{err: ErrEmailAlreadyInUse}, profiles, nil)
	if _, err := o.SignUp(context.Background(), "a@b.co", "secret1"); !errors.Is(err, ErrEmailAlreadyInUse) {
		t.Fatalf("expected email in use, got %v", err)
	}
	if len(profiles.calls) != 0 {
		t.Fatalf("profile must not be created")
	}
}

func TestOnboarding_SocialNewUserProfileFailureOnlyLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	profiles := &stubProfiles{err: errors.New("quota exceeded")}
	svc := stubService{social: SocialSession{
		Session:   Session{User: User{UID: "g1", Email: "g@b.co"}},
		IsNewUser: true,
	}}
	o := NewOnboarding(svc, profiles, zap.New(core))

	session, err := o.SignInWithGoogle(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("sign in must succeed, got %v", err)
	}
	if !session.IsNewUser {
		t.Fatalf("expected new user")
	}
	if len(profiles.calls) != 1 {
		t.Fatalf("expected profile attempt, got %d", len(profiles.calls))
	}
	if logs.FilterMessage("auth: failed to create user profile").Len() != 1 {
		t.Fatalf("expected warning to be logged, got %v", logs.All())
	}
}

func TestOnboarding_SocialReturningUserSkipsProfile(t *testing.T) {
	profiles := &stubProfiles{}
	svc := stubService{social: SocialSession{Session: Session{User: User{UID: "a1", Email: "a@b.co"}}}}
	o := NewOnboarding(svc, profiles, nil)
	if _, err := o.SignInWithApple(context.Background(), "token"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if len(profiles.calls) != 0 {
		t.Fatalf("returning users must not get a new profile")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want string
		code string
	}{
		{"coded", ErrWrongPassword, ErrWrongPassword.Message, CodeWrongPassword},
		{"developer error", NewError(CodeDeveloperError, "10"), MessageGoogleConfiguration, CodeDeveloperError},
		{"plain", errors.New("network down"), "network down", CodeUnknown},
		{"empty", errors.New(""), FallbackSignUp, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in, FallbackSignUp)
			if got.Error() != tt.want || CodeOf(got) != tt.code {
				t.Fatalf("got %q/%q, want %q/%q", got.Error(), CodeOf(got), tt.want, tt.code)
			}
		})
	}
}

func TestUnavailable_FailsEveryOperation(t *testing.T) {
	var u Unavailable
	ctx := context.Background()
	checks := map[string]error{}
	_, checks["signin"] = u.SignIn(ctx, "a@b.co", "secret1")
	_, checks["signup"] = u.SignUp(ctx, "a@b.co", "secret1")
	checks["reset"] = u.SendPasswordReset(ctx, "a@b.co")
	_, checks["google"] = u.SignInWithGoogle(ctx, "t")
	_, checks["apple"] = u.SignInWithApple(ctx, "t")
	_, checks["verify"] = u.VerifyToken(ctx, "t")
	checks["confirm"] = u.ConfirmPasswordReset(ctx, "t", "secret2")
	for name, err := range checks {
		if CodeOf(err) != CodeBackendNotInitialized {
			t.Fatalf("%s: expected backend error, got %v", name, err)
		}
	}
}
