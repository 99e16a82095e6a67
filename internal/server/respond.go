package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/validation"
)

const (
	codeInvalidRequest = "invalid-request"
	codeUnauthorized   = "unauthorized"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeValidation(w http.ResponseWriter, errs validation.Errors) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}

// writeFailure maps a store or auth error to a status and the coded body.
func writeFailure(w http.ResponseWriter, err error) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		writeValidation(w, errs)
		return
	}
	status, code, message := classify(err)
	writeError(w, status, code, message)
}

func classify(err error) (int, string, string) {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return storeStatus(storeErr.Code), storeErr.Code, storeErr.Error()
	}
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return authStatus(authErr.Code), authErr.Code, authErr.Error()
	}
	normalized := store.Normalize(err, "An unknown error occurred")
	return http.StatusInternalServerError, store.CodeUnknown, normalized.Error()
}

func storeStatus(code string) int {
	switch code {
	case store.CodeBackendNotInitialized, store.CodeCancelled:
		return http.StatusServiceUnavailable
	case store.CodeVehicleNotFound, store.CodeProfileNotFound:
		return http.StatusNotFound
	case store.CodeInvalidArgument:
		return http.StatusBadRequest
	case store.CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func authStatus(code string) int {
	switch code {
	case auth.CodeBackendNotInitialized:
		return http.StatusServiceUnavailable
	case auth.CodeEmailAlreadyInUse, auth.CodeAccountExists:
		return http.StatusConflict
	case auth.CodeInvalidEmail, auth.CodeWeakPassword, auth.CodeExpiredToken,
		auth.CodeGoogleSignInFailed, auth.CodeAppleSignInFailed:
		return http.StatusBadRequest
	case auth.CodeUserNotFound, auth.CodeWrongPassword, auth.CodeInvalidToken:
		return http.StatusUnauthorized
	case auth.CodeAppleNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return store.NewError(store.CodeInvalidArgument, "Invalid request: malformed JSON body", err)
	}
	return nil
}

func (s *Server) logStoreFailure(op string, err error) {
	s.logger.Warn("server: store operation failed",
		zap.String("op", op),
		zap.String("code", store.CodeOf(err)),
		zap.Error(err),
	)
}
