package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-trackjournal/internal/authlocal"
	"github.com/goliatone/go-trackjournal/internal/mail"
	"github.com/goliatone/go-trackjournal/internal/store/memory"
	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/catalog"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	handler http.Handler
	records *memory.Store
	authSvc *authlocal.Service
	mailer  *recordingMailer
}

type recordingMailer struct {
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newHarness(t *testing.T, mutate func(*Deps)) harness {
	t.Helper()
	now := func() time.Time { return testNow }
	mem := memory.New(memory.WithClock(now))
	mailer := &recordingMailer{}
	svc, err := authlocal.New(authlocal.Config{
		Secret:     []byte("server-test-secret-0123"),
		Issuer:     "trackjournal-test",
		TokenTTL:   time.Hour,
		ResetTTL:   time.Hour,
		ResetURL:   "https://garage.test/reset",
		BcryptCost: bcrypt.MinCost,
	}, mem, mailer, authlocal.WithClock(now))
	require.NoError(t, err)

	static, err := catalog.NewDefaultStatic()
	require.NoError(t, err)

	deps := Deps{
		Records:  mem,
		Profiles: mem,
		Auth:     auth.NewOnboarding(svc, mem, nil),
		Tokens:   svc,
		Resetter: svc,
		Catalog:  static,
		Now:      now,
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv, err := New(context.Background(), Options{}, deps)
	require.NoError(t, err)
	return harness{handler: srv.Handler(), records: mem, authSvc: svc, mailer: mailer}
}

func (h harness) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h harness) signUp(t *testing.T, email string) auth.Session {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func camry() map[string]any {
	return map[string]any{
		"make":  "Toyota",
		"model": "Camry",
		"year":  2020,
		"type":  "car",
		"color": "Blue",
	}
}

func TestAuth_SignUpAndSignIn(t *testing.T) {
	h := newHarness(t, nil)
	session := h.signUp(t, "driver@example.com")

	profile, err := h.records.GetProfile(context.Background(), session.UID)
	require.NoError(t, err)
	require.Equal(t, "driver@example.com", profile.Email)

	rec := h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "driver@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, SessionCookie, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	rec = h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "driver@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, auth.CodeWrongPassword, decodeError(t, rec).Code)
}

func TestAuth_SignUpConflictsAndValidation(t *testing.T) {
	h := newHarness(t, nil)
	h.signUp(t, "driver@example.com")

	rec := h.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    "driver@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":           "new@example.com",
		"password":        "secret1",
		"confirmPassword": "secret2",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "confirmPassword")
}

func TestVehicles_CRUD(t *testing.T) {
	h := newHarness(t, nil)
	token := h.signUp(t, "driver@example.com").Token

	rec := h.do(t, http.MethodPost, "/api/vehicles", token, camry())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created vehicle.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "2020 Toyota Camry", created.Title())

	rec = h.do(t, http.MethodGet, "/api/vehicles", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list vehicleList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)

	rec = h.do(t, http.MethodPatch, "/api/vehicles/"+created.ID, token, map[string]any{"color": "Red"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated vehicle.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "Red", updated.Color)
	require.Equal(t, "Camry", updated.Model)

	rec = h.do(t, http.MethodGet, "/api/vehicles/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/vehicles/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/vehicles/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, store.CodeVehicleNotFound, decodeError(t, rec).Code)
}

func TestVehicles_FractionalYearIsTruncated(t *testing.T) {
	h := newHarness(t, nil)
	token := h.signUp(t, "driver@example.com").Token

	payload := camry()
	payload["year"] = 2020.5
	rec := h.do(t, http.MethodPost, "/api/vehicles", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created vehicle.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, 2020, created.Year)
}

func TestVehicles_ValidationErrors(t *testing.T) {
	h := newHarness(t, nil)
	token := h.signUp(t, "driver@example.com").Token

	payload := camry()
	payload["year"] = 1800
	payload["model"] = ""
	rec := h.do(t, http.MethodPost, "/api/vehicles", token, payload)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Year must be between 1900 and 2026", body.Errors["year"])
	require.Equal(t, "Model is required", body.Errors["model"])
}

func TestVehicles_PatchValidatesMergedRecord(t *testing.T) {
	h := newHarness(t, nil)
	token := h.signUp(t, "driver@example.com").Token

	rec := h.do(t, http.MethodPost, "/api/vehicles", token, camry())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created vehicle.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = h.do(t, http.MethodPatch, "/api/vehicles/"+created.ID, token, map[string]any{"type": "spaceship"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	stored, err := h.records.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, vehicle.TypeCar, stored.Type)
}

func TestVehicles_SchemaRejectsWrongTypes(t *testing.T) {
	h := newHarness(t, nil)
	token := h.signUp(t, "driver@example.com").Token

	payload := camry()
	payload["year"] = "twenty twenty"
	rec := h.do(t, http.MethodPost, "/api/vehicles", token, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, codeInvalidRequest, decodeError(t, rec).Code)
}

func TestVehicles_RequireAuthentication(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/vehicles", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, codeUnauthorized, decodeError(t, rec).Code)

	rec = h.do(t, http.MethodGet, "/api/vehicles", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVehicles_OtherOwnersAreHidden(t *testing.T) {
	h := newHarness(t, nil)
	owner := h.signUp(t, "owner@example.com").Token
	other := h.signUp(t, "other@example.com").Token

	rec := h.do(t, http.MethodPost, "/api/vehicles", owner, camry())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created vehicle.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = h.do(t, method, "/api/vehicles/"+created.ID, other, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, method)
	}
	rec = h.do(t, http.MethodPatch, "/api/vehicles/"+created.ID, other, map[string]any{"color": "Red"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/vehicles", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestVehicles_UnavailableBackend(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Records = store.Unavailable{} })
	token := h.signUp(t, "driver@example.com").Token

	rec := h.do(t, http.MethodGet, "/api/vehicles", token, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	detail := decodeError(t, rec)
	require.Equal(t, store.CodeBackendNotInitialized, detail.Code)
	require.Equal(t, store.MessageBackendNotInitialized, detail.Message)
}

func TestOpenAPIAndHealth(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Contains(t, doc, "paths")

	rec = h.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/api/makes?q=toy", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Toyota")
	require.NotContains(t, rec.Body.String(), "Honda")
}

func pageRequest(method, target, token string, form url.Values) *http.Request {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return req
}

func TestPages_GarageRendersCards(t *testing.T) {
	h := newHarness(t, nil)
	session := h.signUp(t, "driver@example.com")

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodGet, "/garage", session.Token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No vehicles yet")

	_, err := h.records.Create(context.Background(), session.UID, vehicle.Data{
		Make: "Honda", Model: "Civic", Year: 2019, Type: vehicle.TypeCar,
	})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodGet, "/garage?added=1", session.Token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "2019 Honda Civic")
	require.Contains(t, rec.Body.String(), "Vehicle added successfully!")
}

func TestPages_RequireSession(t *testing.T) {
	h := newHarness(t, nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodGet, "/garage", "", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Sign in required")
}

func TestPages_CreateVehicleForm(t *testing.T) {
	h := newHarness(t, nil)
	session := h.signUp(t, "driver@example.com")

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodGet, "/garage/new", session.Token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Add Vehicle")

	invalid := url.Values{"type": {"car"}, "make": {"Toyota"}, "model": {"Camry"}, "year": {"1850"}}
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodPost, "/garage/new", session.Token, invalid))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Year must be between 1900 and 2026")

	valid := url.Values{"type": {"truck"}, "make": {"Ford"}, "model": {"F-150"}, "year": {"2022"}, "vin": {"1ftfw1e53nfa00001"}}
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodPost, "/garage/new", session.Token, valid))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/garage?added=1", rec.Header().Get("Location"))

	list, err := h.records.List(context.Background(), session.UID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "1FTFW1E53NFA00001", list[0].VIN)
	require.Equal(t, vehicle.TypeTruck, list[0].Type)
}

func TestPages_CreateFormListsModelsOfTypedMake(t *testing.T) {
	h := newHarness(t, nil)
	session := h.signUp(t, "driver@example.com")

	posted := url.Values{"type": {"car"}, "make": {"toyota"}, "year": {"2021"}}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodPost, "/garage/new", session.Token, posted))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Model is required")
	for _, model := range []string{"Camry", "Corolla", "Prius", "RAV4", "Highlander"} {
		require.Contains(t, body, `<option value="`+model+`">`)
	}
	require.NotContains(t, body, `<option value="Civic">`)
}

func TestPages_EditVehicleForm(t *testing.T) {
	h := newHarness(t, nil)
	session := h.signUp(t, "driver@example.com")
	created, err := h.records.Create(context.Background(), session.UID, vehicle.Data{
		Make: "Toyota", Model: "Camry", Year: 2020, Type: vehicle.TypeCar,
	})
	require.NoError(t, err)

	target := "/garage/" + created.ID + "/edit"
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodGet, target, session.Token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Save Changes")

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodPost, target, session.Token, url.Values{"color": {"Silver"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/garage?updated=1", rec.Header().Get("Location"))

	stored, err := h.records.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Silver", stored.Color)
	require.Equal(t, "Camry", stored.Model)
}

var resetToken = regexp.MustCompile(`token=([^\s"&]+)`)

func TestPages_PasswordReset(t *testing.T) {
	h := newHarness(t, nil)
	h.signUp(t, "driver@example.com")

	rec := h.do(t, http.MethodPost, "/api/auth/reset", "", map[string]string{"email": "driver@example.com"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, h.mailer.sent, 1)
	match := resetToken.FindStringSubmatch(h.mailer.sent[0].Body)
	require.Len(t, match, 2, h.mailer.sent[0].Body)
	token, err := url.QueryUnescape(match[1])
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodGet, "/reset-password?token="+url.QueryEscape(token), "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	mismatch := url.Values{"token": {token}, "password": {"newsecret"}, "confirmPassword": {"other"}}
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodPost, "/reset-password", "", mismatch))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Passwords do not match")

	form := url.Values{"token": {token}, "password": {"newsecret"}, "confirmPassword": {"newsecret"}}
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodPost, "/reset-password", "", form))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Your password has been updated")

	rec = h.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "driver@example.com",
		"password": "newsecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, pageRequest(http.MethodPost, "/reset-password", "", form))
	require.NotEqual(t, http.StatusOK, rec.Code, "reset tokens are single use")
}
