package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/domain/leave"
	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
)

var ErrNotFound = errors.New("session not found")

// Workspace is everything one signed-in browser sees: its login flow, its
// toast and its own screen controllers. Nothing is shared between
// workspaces.
type Workspace struct {
	ID      string
	Toaster *notify.Toaster
	Login   *auth.Login

	base *gateway.Client

	mu           sync.Mutex
	client       *gateway.Client
	screens      map[string]*masterdata.Screen
	opened       map[string]bool
	leaves       *leave.Approvals
	leavesOpened bool
	lastSeen     time.Time
}

func newWorkspace(base *gateway.Client, toastTTL time.Duration) *Workspace {
	toaster := notify.NewToaster(toastTTL)
	return &Workspace{
		ID:       uuid.NewString(),
		Toaster:  toaster,
		Login:    auth.NewLogin(base, toaster),
		base:     base,
		lastSeen: time.Now(),
	}
}

// Activate binds the workspace to the gateway token of a completed login and
// builds fresh screens for it.
func (w *Workspace) Activate() error {
	token := w.Login.Token()
	if token == "" {
		return gateway.ErrNotLoggedIn
	}
	client := w.base.WithToken(token)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.client = client
	w.screens = make(map[string]*masterdata.Screen)
	w.opened = make(map[string]bool)
	for _, def := range masterdata.All() {
		w.screens[def.Name] = masterdata.NewScreen(def, client, w.Toaster)
	}
	w.leaves = leave.NewApprovals(client, w.Toaster)
	w.leavesOpened = false
	return nil
}

// Deactivate drops the token and every screen.
func (w *Workspace) Deactivate() {
	w.Login.Logout()
	w.Toaster.Dismiss()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.client = nil
	w.screens = nil
	w.opened = nil
	w.leaves = nil
	w.leavesOpened = false
}

func (w *Workspace) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.client != nil
}

// Screen returns the named master-data screen, opening it on first use.
func (w *Workspace) Screen(ctx context.Context, name string) (*masterdata.Screen, error) {
	def, err := masterdata.Lookup(name)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	if w.client == nil {
		w.mu.Unlock()
		return nil, gateway.ErrNotLoggedIn
	}
	screen := w.screens[def.Name]
	first := !w.opened[def.Name]
	w.opened[def.Name] = true
	w.mu.Unlock()

	if first {
		// A failed open already notified; the screen still renders empty.
		_ = screen.Open(ctx)
	}
	return screen, nil
}

// Approvals returns the pending-leave screen, loading it on first use.
func (w *Workspace) Approvals(ctx context.Context) (*leave.Approvals, error) {
	w.mu.Lock()
	if w.client == nil {
		w.mu.Unlock()
		return nil, gateway.ErrNotLoggedIn
	}
	approvals := w.leaves
	first := !w.leavesOpened
	w.leavesOpened = true
	w.mu.Unlock()

	if first {
		_ = approvals.Load(ctx)
	}
	return approvals, nil
}

// Toast returns the visible notification, if any.
func (w *Workspace) Toast() *notify.Notification {
	n, ok := w.Toaster.Current()
	if !ok {
		return nil
	}
	return &n
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}
