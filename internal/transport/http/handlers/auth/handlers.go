package authhandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/session"
	"hrconsole/internal/transport/http/api"
	"hrconsole/internal/transport/http/middleware"
	"hrconsole/internal/transport/http/shared"
)

type Handler struct {
	Sessions *shared.Sessions
}

func NewHandler(sessions *shared.Sessions) *Handler {
	return &Handler{Sessions: sessions}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/state", h.handleState)
		r.Post("/username", h.handleUsername)
		r.Post("/password", h.handlePassword)
		r.Post("/back", h.handleBack)
		r.Post("/logout", h.handleLogout)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.Sessions.RequireWorkspace)
		r.Get("/notification", h.handleNotification)
		r.Delete("/notification", h.handleDismiss)
	})
}

type loginView struct {
	auth.LoginState
	SessionToken string `json:"sessionToken,omitempty"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.Sessions.Lookup(r)
	if !ok {
		api.Success(w, loginView{LoginState: auth.LoginState{Step: auth.StepUsername}}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Screen(w, loginView{LoginState: ws.Login.State()}, ws.Toast(), middleware.GetRequestID(r.Context()))
}

// handleUsername starts a workspace when the caller has none, so the first
// login step also hands out the session cookie.
func (h *Handler) handleUsername(w http.ResponseWriter, r *http.Request) {
	var payload usernameRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	ws, ok := h.Sessions.Lookup(r)
	if !ok {
		ws = h.Sessions.Registry.Create()
	}

	err := ws.Login.SubmitUsername(r.Context(), payload.Username)
	token, issueErr := h.Sessions.Issue(w, ws)
	if issueErr != nil {
		h.issueFailed(w, r, ws, issueErr)
		return
	}
	shared.Respond(w, r, ws, loginView{LoginState: ws.Login.State(), SessionToken: token}, err)
}

func (h *Handler) handlePassword(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.Sessions.Lookup(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "session_expired", "session expired, please start again", middleware.GetRequestID(r.Context()))
		return
	}
	var payload passwordRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}

	if err := ws.Login.SubmitPassword(r.Context(), payload.Password); err != nil {
		shared.Respond(w, r, ws, loginView{LoginState: ws.Login.State()}, err)
		return
	}
	if err := ws.Activate(); err != nil {
		shared.Respond(w, r, ws, loginView{LoginState: ws.Login.State()}, err)
		return
	}
	// the role is only known now, so the token is reissued
	token, err := h.Sessions.Issue(w, ws)
	if err != nil {
		h.issueFailed(w, r, ws, err)
		return
	}
	slog.Info("console login", "username", ws.Login.State().Username, "sessionId", ws.ID)
	shared.Respond(w, r, ws, loginView{LoginState: ws.Login.State(), SessionToken: token}, nil)
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.Sessions.Lookup(r)
	if !ok {
		api.Success(w, loginView{LoginState: auth.LoginState{Step: auth.StepUsername}}, middleware.GetRequestID(r.Context()))
		return
	}
	err := ws.Login.Back()
	shared.Respond(w, r, ws, loginView{LoginState: ws.Login.State()}, err)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if ws, ok := h.Sessions.Lookup(r); ok {
		h.Sessions.Registry.Remove(ws.ID)
	}
	h.Sessions.Clear(w)
	api.Success(w, loginView{LoginState: auth.LoginState{Step: auth.StepUsername}}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request) {
	ws, ok := shared.MustWorkspace(w, r)
	if !ok {
		return
	}
	api.Screen(w, nil, ws.Toast(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	ws, ok := shared.MustWorkspace(w, r)
	if !ok {
		return
	}
	ws.Toaster.Dismiss()
	api.Screen(w, nil, nil, middleware.GetRequestID(r.Context()))
}

func (h *Handler) issueFailed(w http.ResponseWriter, r *http.Request, ws *session.Workspace, err error) {
	slog.Error("session token issue failed", "sessionId", ws.ID, "err", err)
	api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue session", middleware.GetRequestID(r.Context()))
}
