package session

import (
	"log/slog"
	"sync"
	"time"

	"hrconsole/internal/gateway"
)

// Registry owns the live workspaces of the console server.
type Registry struct {
	base     *gateway.Client
	toastTTL time.Duration
	idleTTL  time.Duration

	mu       sync.Mutex
	sessions map[string]*Workspace
}

func NewRegistry(base *gateway.Client, toastTTL, idleTTL time.Duration) *Registry {
	return &Registry{base: base, toastTTL: toastTTL, idleTTL: idleTTL, sessions: map[string]*Workspace{}}
}

func (r *Registry) Create() *Workspace {
	ws := newWorkspace(r.base, r.toastTTL)
	r.mu.Lock()
	r.sessions[ws.ID] = ws
	r.mu.Unlock()
	return ws
}

// Get returns a live workspace and marks it as used.
func (r *Registry) Get(id string) (*Workspace, error) {
	r.mu.Lock()
	ws, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	ws.touch(time.Now())
	return ws, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	ws, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		ws.Deactivate()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes workspaces idle for longer than the idle TTL.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	var expired []string
	r.mu.Lock()
	for id, ws := range r.sessions {
		if now.Sub(ws.idleSince()) > r.idleTTL {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		r.Remove(id)
	}
	if len(expired) > 0 {
		slog.Info("expired console sessions", "count", len(expired))
	}
	return len(expired)
}
