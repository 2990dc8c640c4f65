package shared

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/notify"
	"hrconsole/internal/requestctx"
	"hrconsole/internal/session"
	"hrconsole/internal/transport/http/api"
	"hrconsole/internal/transport/http/middleware"
)

type ctxKey string

const ctxKeyWorkspace ctxKey = "workspace"

// Sessions carries what the console handlers need to find and mint sessions.
type Sessions struct {
	Registry *session.Registry
	Secret   string
	TTL      time.Duration
	Secure   bool
}

// Lookup returns the workspace named by the request's session token.
func (s *Sessions) Lookup(r *http.Request) (*session.Workspace, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.SessionID == "" {
		return nil, false
	}
	ws, err := s.Registry.Get(user.SessionID)
	if err != nil {
		return nil, false
	}
	return ws, true
}

// RequireWorkspace rejects requests without a live session and stores the
// workspace in the request context.
func (s *Sessions) RequireWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, ok := s.Lookup(r)
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "session_expired", "session expired, please log in again", middleware.GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyWorkspace, ws)))
	})
}

func Workspace(ctx context.Context) (*session.Workspace, bool) {
	ws, ok := ctx.Value(ctxKeyWorkspace).(*session.Workspace)
	return ws, ok
}

// Issue signs a session token for ws and sets it as a cookie.
func (s *Sessions) Issue(w http.ResponseWriter, ws *session.Workspace) (string, error) {
	state := ws.Login.State()
	token, err := auth.GenerateToken(s.Secret, auth.Claims{
		SessionID: ws.ID,
		Username:  state.Username,
		RoleName:  state.RoleName,
	}, s.TTL)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.TTL.Seconds()),
	})
	return token, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

var errNoWorkspace = errors.New("no workspace in request context")

// MustWorkspace is for handlers mounted behind RequireWorkspace.
func MustWorkspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	ws, ok := Workspace(r.Context())
	if !ok {
		api.Fail(w, http.StatusInternalServerError, "internal_error", errNoWorkspace.Error(), middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return ws, true
}

// Respond answers a screen operation: the view either way, plus the error
// mapped to a status when the operation failed.
func Respond(w http.ResponseWriter, r *http.Request, ws *session.Workspace, data any, err error) {
	reqID := middleware.GetRequestID(r.Context())
	toast := RaisedToast(r, ws)
	if err != nil {
		api.FailScreen(w, err, data, toast, reqID)
		return
	}
	api.Screen(w, data, toast, reqID)
}

// RaisedToast is the workspace toast if this request raised it. A toast left
// over from an earlier request stays visible in the workspace but is not
// attached to this response.
func RaisedToast(r *http.Request, ws *session.Workspace) *notify.Notification {
	toast := ws.Toast()
	if toast == nil {
		return nil
	}
	if started := requestctx.GetStartedAt(r.Context()); !started.IsZero() && toast.CreatedAt.Before(started) {
		return nil
	}
	return toast
}

// RequireActive rejects workspaces whose login has not completed. It must run
// after RequireWorkspace.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, ok := MustWorkspace(w, r)
		if !ok {
			return
		}
		if !ws.Active() {
			api.Fail(w, http.StatusUnauthorized, "not_logged_in", "please log in first", middleware.GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
