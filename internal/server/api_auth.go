package server

import (
	"net/http"

	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/validation"
)

type credentialsRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirmPassword,omitempty"`
}

type sessionResponse struct {
	auth.Session
	IsNewUser *bool `json:"isNewUser,omitempty"`
}

func (s *Server) startSession(w http.ResponseWriter, status int, session auth.Session, isNew *bool) {
	http.SetCookie(w, sessionCookie(session.Token, session.ExpiresAt, s.opts.SecureCookies))
	writeJSON(w, status, sessionResponse{Session: session, IsNewUser: isNew})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if req.ConfirmPassword != nil {
		if errs := validation.SignUp(req.Email, req.Password, *req.ConfirmPassword); !errs.Empty() {
			writeValidation(w, errs)
			return
		}
	}
	session, err := s.deps.Auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.startSession(w, http.StatusCreated, session, nil)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	session, err := s.deps.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.startSession(w, http.StatusOK, session, nil)
}

func (s *Server) handleSendReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.deps.Auth.SendPasswordReset(r.Context(), req.Email); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleConfirmReset(w http.ResponseWriter, r *http.Request) {
	if s.deps.Resetter == nil {
		writeError(w, http.StatusNotImplemented, "not-supported", "Password reset confirmation is not available")
		return
	}
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.deps.Resetter.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	session, err := s.deps.Auth.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.startSession(w, http.StatusOK, session.Session, &session.IsNewUser)
}

func (s *Server) handleApple(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IdentityToken string `json:"identityToken"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	session, err := s.deps.Auth.SignInWithApple(r.Context(), req.IdentityToken)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.startSession(w, http.StatusOK, session.Session, &session.IsNewUser)
}
