package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-trackjournal/pkg/auth"
)

const accountColumns = `uid, email, display_name, password_hash, provider, subject, created_at, last_sign_in_at`

func emailKey(email string) any {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return nil
	}
	return key
}

func scanAccount(row rowScanner) (auth.Account, error) {
	var (
		a             auth.Account
		provider      string
		created, last int64
	)
	if err := row.Scan(&a.UID, &a.Email, &a.DisplayName, &a.PasswordHash, &provider, &a.Subject, &created, &last); err != nil {
		return auth.Account{}, err
	}
	a.Provider = auth.Provider(provider)
	a.CreatedAt = fromUnix(created)
	a.LastSignInAt = fromUnix(last)
	return a, nil
}

// CreateAccount inserts account. A taken email (ignoring case) yields
// auth.ErrEmailAlreadyInUse.
func (s *Store) CreateAccount(ctx context.Context, account auth.Account) error {
	if key := emailKey(account.Email); key != nil {
		if _, err := s.AccountByEmail(ctx, account.Email); err == nil {
			return auth.ErrEmailAlreadyInUse
		} else if !errors.Is(err, auth.ErrUserNotFound) {
			return err
		}
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO accounts (uid, email, email_key, display_name, password_hash, provider, subject, created_at, last_sign_in_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		account.UID, account.Email, emailKey(account.Email), account.DisplayName, account.PasswordHash,
		string(account.Provider), account.Subject, toUnix(account.CreatedAt), toUnix(account.LastSignInAt))
	if err != nil {
		if _, lookupErr := s.AccountByEmail(ctx, account.Email); lookupErr == nil && account.Email != "" {
			return auth.ErrEmailAlreadyInUse
		}
		return auth.Normalize(err, auth.FallbackSignUp)
	}
	return nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	key := emailKey(email)
	if key == nil {
		return auth.Account{}, auth.ErrUserNotFound
	}
	return s.queryAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email_key = ?`, key)
}

func (s *Store) AccountBySubject(ctx context.Context, provider auth.Provider, subject string) (auth.Account, error) {
	return s.queryAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE provider = ? AND subject = ?`,
		string(provider), subject)
}

func (s *Store) AccountByUID(ctx context.Context, uid string) (auth.Account, error) {
	return s.queryAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE uid = ?`, uid)
}

func (s *Store) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	return s.execAccount(ctx, `UPDATE accounts SET password_hash = ? WHERE uid = ?`, passwordHash, uid)
}

func (s *Store) TouchSignIn(ctx context.Context, uid string, at time.Time) error {
	return s.execAccount(ctx, `UPDATE accounts SET last_sign_in_at = ? WHERE uid = ?`, toUnix(at), uid)
}

func (s *Store) queryAccount(ctx context.Context, query string, args ...any) (auth.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, s.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Account{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.Account{}, auth.Normalize(err, auth.FallbackSignIn)
	}
	return a, nil
}

func (s *Store) execAccount(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return auth.Normalize(err, auth.FallbackSignIn)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return auth.Normalize(err, auth.FallbackSignIn)
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
