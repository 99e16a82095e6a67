package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-trackjournal/pkg/auth"
)

var errSignedOut = errors.New(`not signed in; run "trackjournal auth signin" first`)

type savedSession struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".trackjournal-session.json"
	}
	return filepath.Join(dir, "trackjournal", "session.json")
}

func saveSession(path string, session auth.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	data, err := json.MarshalIndent(savedSession{
		UID:       session.UID,
		Email:     session.Email,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadSession(path string) (savedSession, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return savedSession{}, errSignedOut
	}
	if err != nil {
		return savedSession{}, fmt.Errorf("session: read: %w", err)
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return savedSession{}, fmt.Errorf("session: decode: %w", err)
	}
	if s.Token == "" {
		return savedSession{}, errSignedOut
	}
	return s, nil
}

func clearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// currentUser verifies the stored token against the account backend.
func currentUser(ctx context.Context, a *app) (auth.User, error) {
	s, err := loadSession(sessionPath)
	if err != nil {
		return auth.User{}, err
	}
	user, err := a.tokens.VerifyToken(ctx, s.Token)
	if err != nil {
		if auth.CodeOf(err) == auth.CodeInvalidToken {
			return auth.User{}, errSignedOut
		}
		return auth.User{}, err
	}
	return user, nil
}
