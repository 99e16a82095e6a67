package authlocal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-trackjournal/pkg/auth"
)

const (
	purposeSession = "session"
	purposeReset   = "password-reset"
)

type tokenClaims struct {
	Email       string `json:"email,omitempty"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issue(account auth.Account, purpose string, ttl time.Duration, fingerprint string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(ttl)
	claims := tokenClaims{
		Email:       account.Email,
		Purpose:     purpose,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.UID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("authlocal: sign token: %w", err)
	}
	return signed, expires, nil
}

var errPurpose = errors.New("authlocal: token purpose mismatch")

func (s *Service) parse(token, purpose string) (*tokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}
	claims := &tokenClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return nil, errPurpose
	}
	return claims, nil
}

// identityClaims are the fields read from Google and Apple identity tokens.
type identityClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) verifyIdentity(provider IdentityProvider, token string) (*identityClaims, error) {
	key, methods, err := identityKey(provider.Key)
	if err != nil {
		return nil, err
	}
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
	}
	if provider.Audience != "" {
		opts = append(opts, jwt.WithAudience(provider.Audience))
	}
	claims := &identityClaims{}
	if _, err := jwt.NewParser(opts...).ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return nil, err
	}
	if !issuerAllowed(claims.Issuer, provider.Issuers) {
		return nil, fmt.Errorf("authlocal: unexpected issuer %q", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, errors.New("authlocal: identity token without subject")
	}
	return claims, nil
}

func identityKey(raw string) (any, []string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-----BEGIN") {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("authlocal: parse identity key: %w", err)
		}
		return key, []string{"RS256"}, nil
	}
	return []byte(raw), []string{"HS256"}, nil
}

func issuerAllowed(iss string, allowed []string) bool {
	for _, candidate := range allowed {
		if iss == candidate {
			return true
		}
	}
	return false
}
