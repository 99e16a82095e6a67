package server

import (
	"bytes"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/form"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/validation"
	"github.com/goliatone/go-trackjournal/pkg/views"
)

// render buffers the page so template failures never leave a half written body.
func (s *Server) render(w http.ResponseWriter, status int, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.logger.Error("server: render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, status int, state views.ErrorState) {
	s.render(w, status, func(buf *bytes.Buffer) error {
		return s.deps.Views.RenderError(buf, state)
	})
}

func (s *Server) pageUnauthorized(w http.ResponseWriter, _ *http.Request, err error) {
	if err != nil {
		s.logger.Debug("server: page session rejected", zap.Error(err))
	}
	http.SetCookie(w, sessionCookie("", s.deps.Now().Add(-1), s.opts.SecureCookies))
	s.renderError(w, http.StatusUnauthorized, views.ErrorState{
		Title:   "Sign in required",
		Message: "Your session has expired or you are not signed in.",
	})
}

func (s *Server) pageGarage(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	list, err := s.deps.Records.List(r.Context(), user.UID)
	if err != nil {
		s.logStoreFailure("list", err)
		err = store.Normalize(err, store.FallbackList)
		status, _, _ := classify(err)
		s.renderError(w, status, views.ErrorState{
			Title:    "Could not load your garage",
			Message:  err.Error(),
			RetryURL: s.path("/garage"),
		})
		return
	}

	page := views.Garage{AddURL: s.path("/garage/new")}
	switch {
	case r.URL.Query().Has("added"):
		page.Flash = form.MessageCreated
	case r.URL.Query().Has("updated"):
		page.Flash = form.MessageUpdated
	}
	for _, v := range list {
		page.Cards = append(page.Cards, views.CardFor(v, s.path("/garage/"+v.ID+"/edit")))
	}
	s.render(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return s.deps.Views.RenderGarage(buf, page)
	})
}

func (s *Server) pageNewVehicle(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	s.serveForm(w, r, form.Create(user.UID), s.path("/garage/new"), false)
}

func (s *Server) pageCreateVehicle(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	s.serveForm(w, r, form.Create(user.UID), s.path("/garage/new"), true)
}

func (s *Server) pageEditVehicle(w http.ResponseWriter, r *http.Request) {
	s.serveEdit(w, r, false)
}

func (s *Server) pageUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	s.serveEdit(w, r, true)
}

func (s *Server) serveEdit(w http.ResponseWriter, r *http.Request, submit bool) {
	id := r.PathValue("id")
	record, err := s.ownedVehicle(r.Context(), id)
	if err != nil {
		err = store.Normalize(err, store.FallbackGet)
		status, _, _ := classify(err)
		s.renderError(w, status, views.ErrorState{
			Title:   "Vehicle unavailable",
			Message: err.Error(),
		})
		return
	}
	s.serveForm(w, r, form.Edit(&record), s.path("/garage/"+id+"/edit"), submit)
}

// serveForm runs one form session per request: load the catalog, replay the
// posted fields and submit when asked.
func (s *Server) serveForm(w http.ResponseWriter, r *http.Request, intent form.Intent, action string, submit bool) {
	ctx := r.Context()
	var saved string
	ctrl, err := form.New(intent, s.deps.Catalog, store.NewSubmitter(s.deps.Records),
		form.WithClock(s.deps.Now),
		form.WithLogger(s.logger),
		form.OnSuccess(func(id string) { saved = id }),
	)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, views.ErrorState{Detail: err.Error()})
		return
	}

	if err := ctrl.Init(ctx); err != nil {
		s.renderLoadError(w, ctrl, action)
		return
	}

	status := http.StatusOK
	if submit {
		status = s.submitForm(ctrl, r)
		if status == http.StatusBadGateway && ctrl.State() == form.LoadError {
			s.renderLoadError(w, ctrl, action)
			return
		}
		if status == http.StatusSeeOther {
			flash := "added"
			if intent.Mode() == form.ModeEdit {
				flash = "updated"
			}
			s.logger.Debug("server: vehicle saved", zap.String("id", saved), zap.String("mode", string(intent.Mode())))
			http.Redirect(w, r, s.path("/garage")+"?"+flash+"=1", http.StatusSeeOther)
			return
		}
	}

	page := views.FormFromSnapshot(ctrl.Snapshot(), action, s.path("/garage"))
	s.render(w, status, func(buf *bytes.Buffer) error {
		return s.deps.Views.RenderForm(buf, page)
	})
}

func (s *Server) renderLoadError(w http.ResponseWriter, ctrl *form.Controller, action string) {
	state := views.ErrorState{Title: form.TitleLoadError, RetryURL: action}
	if load := ctrl.Snapshot().Load; load != nil {
		state.Title = load.Title
		state.Message = load.Message
		state.Detail = load.Detail
	}
	s.renderError(w, http.StatusBadGateway, state)
}

// submitForm replays the posted values onto ctrl and submits. It returns the
// status for the response: 303 on success, otherwise the status the form is
// rendered with.
func (s *Server) submitForm(ctrl *form.Controller, r *http.Request) int {
	if err := r.ParseForm(); err != nil {
		return http.StatusBadRequest
	}
	for _, field := range form.Fields() {
		values, ok := r.PostForm[string(field)]
		if !ok || len(values) == 0 {
			continue
		}
		if err := ctrl.SetField(r.Context(), field, values[0]); err != nil {
			if ctrl.State() == form.LoadError {
				return http.StatusBadGateway
			}
			s.logger.Warn("server: form field rejected", zap.String("field", string(field)), zap.Error(err))
			return http.StatusBadRequest
		}
	}

	err := ctrl.Submit(r.Context())
	var errs validation.Errors
	switch {
	case err == nil:
		return http.StatusSeeOther
	case errors.As(err, &errs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrMissingRecord):
		return http.StatusBadRequest
	default:
		status, _, _ := classify(store.Normalize(err, store.FallbackCreate))
		if status < http.StatusInternalServerError {
			return status
		}
		return http.StatusBadGateway
	}
}

func (s *Server) pageReset(w http.ResponseWriter, r *http.Request) {
	page := views.ResetPage{Action: s.path("/reset-password"), Token: r.URL.Query().Get("token")}
	status := http.StatusOK
	if page.Token == "" {
		page.Error = auth.ErrInvalidToken.Message
		status = http.StatusBadRequest
	}
	s.renderReset(w, status, page)
}

func (s *Server) pageConfirmReset(w http.ResponseWriter, r *http.Request) {
	page := views.ResetPage{Action: s.path("/reset-password")}
	if err := r.ParseForm(); err != nil {
		page.Error = "Invalid request"
		s.renderReset(w, http.StatusBadRequest, page)
		return
	}
	page.Token = r.PostForm.Get("token")
	password := r.PostForm.Get("password")
	if msg := validation.Password(password); msg != "" {
		page.Error = msg
		s.renderReset(w, http.StatusUnprocessableEntity, page)
		return
	}
	if password != r.PostForm.Get("confirmPassword") {
		page.Error = "Passwords do not match"
		s.renderReset(w, http.StatusUnprocessableEntity, page)
		return
	}
	if s.deps.Resetter == nil {
		page.Error = "Password reset is not available"
		s.renderReset(w, http.StatusNotImplemented, page)
		return
	}
	if err := s.deps.Resetter.ConfirmPasswordReset(r.Context(), page.Token, password); err != nil {
		err = auth.Normalize(err, auth.FallbackPasswordReset)
		status, _, _ := classify(err)
		page.Error = err.Error()
		s.renderReset(w, status, page)
		return
	}
	s.renderReset(w, http.StatusOK, views.ResetPage{Done: true})
}

func (s *Server) renderReset(w http.ResponseWriter, status int, page views.ResetPage) {
	s.render(w, status, func(buf *bytes.Buffer) error {
		return s.deps.Views.RenderReset(buf, page)
	})
}
