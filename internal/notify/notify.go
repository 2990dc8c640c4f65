package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier receives the one user-visible outcome of a screen operation.
type Notifier interface {
	Notify(n Notification)
}

func Success(n Notifier, message string) {
	send(n, LevelSuccess, message)
}

func Error(n Notifier, message string) {
	send(n, LevelError, message)
}

func Warning(n Notifier, message string) {
	send(n, LevelWarning, message)
}

func send(n Notifier, level Level, message string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: level, Message: message, CreatedAt: time.Now().UTC()})
}

// Toaster holds at most one visible notification. Each new notification
// replaces the current one and cancels its pending clear.
type Toaster struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Notification
	timer   *time.Timer
	seq     uint64
}

func NewToaster(ttl time.Duration) *Toaster {
	return &Toaster{ttl: ttl}
}

func (t *Toaster) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.current = &n
	if t.ttl <= 0 {
		return
	}
	seq := t.seq
	t.timer = time.AfterFunc(t.ttl, func() {
		t.clear(seq)
	})
}

func (t *Toaster) clear(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// a newer toast arrived after this timer fired
	if seq != t.seq {
		return
	}
	t.current = nil
	t.timer = nil
}

// Current returns the visible notification, if any.
func (t *Toaster) Current() (Notification, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Notification{}, false
	}
	return *t.current, true
}

// Dismiss clears the visible notification immediately.
func (t *Toaster) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.current = nil
}

// Recorder keeps every notification. Screens under test use it to count
// notifications per operation.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
