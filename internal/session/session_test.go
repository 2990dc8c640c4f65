package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrconsole/internal/gateway"
)

func newTestRegistry(t *testing.T, idle time.Duration) *Registry {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/check":
			_, _ = w.Write([]byte(`{"statusCode":1,"message":"User verified"}`))
		case "/login":
			_, _ = w.Write([]byte(`{"statusCode":1,"message":"ok","token":"gw-token","roleName":"HR"}`))
		default:
			if r.Header.Get("Authorization") != "Bearer gw-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"dataFetch":{"table":[]}}`))
		}
	}))
	t.Cleanup(srv.Close)
	client, err := gateway.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return NewRegistry(client, time.Minute, idle)
}

func TestWorkspaceRequiresLogin(t *testing.T) {
	reg := newTestRegistry(t, time.Hour)
	ws := reg.Create()

	if _, err := ws.Screen(context.Background(), "category"); !errors.Is(err, gateway.ErrNotLoggedIn) {
		t.Fatalf("expected not logged in, got %v", err)
	}
	if err := ws.Activate(); !errors.Is(err, gateway.ErrNotLoggedIn) {
		t.Fatalf("activate before login should fail, got %v", err)
	}

	ctx := context.Background()
	if err := ws.Login.SubmitUsername(ctx, "asha"); err != nil {
		t.Fatal(err)
	}
	if err := ws.Login.SubmitPassword(ctx, "pw"); err != nil {
		t.Fatal(err)
	}
	if err := ws.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	screen, err := ws.Screen(ctx, "category")
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if screen.Def.Name != "category" {
		t.Fatalf("unexpected screen %s", screen.Def.Name)
	}
	if _, err := ws.Approvals(ctx); err != nil {
		t.Fatalf("approvals: %v", err)
	}
	if toast := ws.Toast(); toast == nil || toast.Level != "success" {
		t.Fatalf("expected welcome toast, got %+v", toast)
	}

	ws.Deactivate()
	if ws.Active() || ws.Toast() != nil {
		t.Fatal("deactivate should clear the workspace")
	}
}

func TestWorkspacesAreIsolated(t *testing.T) {
	reg := newTestRegistry(t, time.Hour)
	a := reg.Create()
	b := reg.Create()
	if a.ID == b.ID || a.Toaster == b.Toaster {
		t.Fatal("workspaces must not share state")
	}
	if _, err := reg.Get(a.ID); err != nil {
		t.Fatal(err)
	}
	reg.Remove(a.ID)
	if _, err := reg.Get(a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected removed session, got %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one session, got %d", reg.Len())
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	reg := newTestRegistry(t, time.Minute)
	ws := reg.Create()
	if n := reg.Sweep(time.Now()); n != 0 {
		t.Fatalf("fresh session should survive, swept %d", n)
	}
	if n := reg.Sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected one expired session, got %d", n)
	}
	if _, err := reg.Get(ws.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("expired session should be gone")
	}
}
