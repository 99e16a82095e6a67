package auth

import "context"

// Unavailable stands in for an account backend that is not configured.
// Every operation fails with CodeBackendNotInitialized.
type Unavailable struct{}

var (
	_ Service          = Unavailable{}
	_ TokenVerifier    = Unavailable{}
	_ PasswordResetter = Unavailable{}
)

func (Unavailable) SignIn(context.Context, string, string) (Session, error) {
	return Session{}, ErrBackendNotInitialized
}

func (Unavailable) SignUp(context.Context, string, string) (Session, error) {
	return Session{}, ErrBackendNotInitialized
}

func (Unavailable) SendPasswordReset(context.Context, string) error {
	return ErrBackendNotInitialized
}

func (Unavailable) SignInWithGoogle(context.Context, string) (SocialSession, error) {
	return SocialSession{}, ErrBackendNotInitialized
}

func (Unavailable) SignInWithApple(context.Context, string) (SocialSession, error) {
	return SocialSession{}, ErrBackendNotInitialized
}

func (Unavailable) VerifyToken(context.Context, string) (User, error) {
	return User{}, ErrBackendNotInitialized
}

func (Unavailable) ConfirmPasswordReset(context.Context, string, string) error {
	return ErrBackendNotInitialized
}
