package masterdata

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
	"hrconsole/internal/validation"
)

// DeleteFlow gates every destructive call behind an explicit confirmation.
// At most one target is pending at a time.
type DeleteFlow struct {
	def      Definition
	gw       Gateway
	list     *List
	notifier notify.Notifier

	mu      sync.Mutex
	target  string
	pending bool
}

func NewDeleteFlow(def Definition, gw Gateway, list *List, notifier notify.Notifier) *DeleteFlow {
	return &DeleteFlow{def: def, gw: gw, list: list, notifier: notifier}
}

// Request marks id as awaiting confirmation. No call is made.
func (d *DeleteFlow) Request(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return validation.New(d.def.IDField, "is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = id
	d.pending = true
	return nil
}

// Pending returns the target awaiting confirmation.
func (d *DeleteFlow) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target, d.pending
}

func (d *DeleteFlow) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = ""
	d.pending = false
}

// Confirm issues the delete for the pending target. The target is cleared
// before the call, whatever its outcome. Without a target it does nothing.
func (d *DeleteFlow) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return nil
	}
	target := d.target
	d.target = ""
	d.pending = false
	d.mu.Unlock()

	query := url.Values{d.def.IDField: {target}}
	res, err := d.gw.Delete(ctx, d.def.Endpoints.Delete, query)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		notify.Error(d.notifier, gateway.UserMessage(err))
		return err
	}

	message := strings.TrimSpace(res.Message)
	if message == "" {
		message = d.def.Noun + " deleted successfully"
	}
	notify.Success(d.notifier, message)

	if d.list != nil {
		if err := d.list.refresh(ctx); err != nil {
			slog.Warn("reload after delete failed", "entity", d.def.Name, "err", err)
		}
	}
	return nil
}
