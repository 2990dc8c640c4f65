package leave

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/export"
	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
	"hrconsole/internal/validation"
)

type Gateway interface {
	List(ctx context.Context, path string, query url.Values) ([]gateway.Row, error)
	Post(ctx context.Context, path string, query url.Values, body any) (gateway.Result, error)
}

// Approvals is the pending-leave screen. The filtered view holds indices
// into rows, so selection always lives on the single joined row set.
type Approvals struct {
	gw       Gateway
	notifier notify.Notifier

	mu         sync.Mutex
	rows       []Row
	query      string
	view       []int
	issued     uint64
	submitting bool
}

func NewApprovals(gw Gateway, notifier notify.Notifier) *Approvals {
	return &Approvals{gw: gw, notifier: notifier}
}

// Load fetches pending leaves and employees, joins them and resets every
// selection. On failure the rows are emptied and one notification is sent.
func (a *Approvals) Load(ctx context.Context) error {
	err := a.refresh(ctx)
	if err != nil {
		notify.Error(a.notifier, "Could not load pending leaves: "+gateway.UserMessage(err))
	}
	return err
}

func (a *Approvals) refresh(ctx context.Context) error {
	a.mu.Lock()
	a.issued++
	gen := a.issued
	a.mu.Unlock()

	var (
		leaves    []gateway.Row
		employees []gateway.Row
		empErr    error
		g         errgroup.Group
	)
	g.Go(func() error {
		var err error
		leaves, err = a.gw.List(ctx, PendingPath, nil)
		return err
	})
	g.Go(func() error {
		employees, empErr = a.gw.List(ctx, EmployeeListPath, nil)
		return nil
	})
	err := g.Wait()
	if err == nil && empErr != nil {
		slog.Warn("employee list unavailable, names will show as unknown", "err", empErr)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.issued {
		slog.Debug("discarding stale pending leave response", "generation", gen, "latest", a.issued)
		return nil
	}
	if err != nil {
		a.rows = nil
		a.recomputeLocked()
		return err
	}
	a.rows = Join(leaves, employees)
	a.recomputeLocked()
	return nil
}

// Join attaches employee names to pending leaves. Every row starts
// unselected.
func Join(leaves, employees []gateway.Row) []Row {
	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		code := strings.TrimSpace(masterdata.Text(emp, "empCode"))
		if code == "" {
			continue
		}
		names[code] = strings.TrimSpace(masterdata.Text(emp, "empName"))
	}

	rows := make([]Row, 0, len(leaves))
	seen := make(map[string]bool, len(leaves))
	for i, rec := range leaves {
		leaveID := strings.TrimSpace(masterdata.Text(rec, "leaveId"))
		if leaveID == "" {
			leaveID = strings.TrimSpace(masterdata.Text(rec, "id"))
		}
		id := leaveID
		if id == "" || seen[id] {
			id = "row-" + strconv.Itoa(i+1)
		}
		seen[id] = true

		code := strings.TrimSpace(masterdata.Text(rec, "empCode"))
		name, ok := names[code]
		if !ok || name == "" {
			name = UnknownEmployee
		}
		from := masterdata.Text(rec, "fromDate")
		to := masterdata.Text(rec, "toDate")
		rows = append(rows, Row{
			ID:        id,
			LeaveID:   leaveID,
			EmpCode:   code,
			EmpName:   name,
			LeaveType: masterdata.Text(rec, "leaveType"),
			FromDate:  from,
			ToDate:    to,
			Days:      parseDays(masterdata.Text(rec, "noOfDays"), from, to),
		})
	}
	return rows
}

func (a *Approvals) recomputeLocked() {
	rows := a.rows
	a.view = masterdata.FilterIndices(len(rows), a.query, func(i int) []string {
		return []string{rows[i].EmpName, rows[i].EmpCode, rows[i].LeaveType}
	})
}

func (a *Approvals) SetQuery(query string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.query = query
	a.recomputeLocked()
}

// Toggle flips the selection of exactly one row.
func (a *Approvals) Toggle(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.rows {
		if a.rows[i].ID == id {
			a.rows[i].Selected = !a.rows[i].Selected
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRowNotFound, id)
}

// SelectAll sets the selection of every row in the filtered view.
func (a *Approvals) SelectAll(selected bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, i := range a.view {
		a.rows[i].Selected = selected
	}
}

func (a *Approvals) Rows() []Row {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Row, len(a.rows))
	copy(out, a.rows)
	return out
}

func (a *Approvals) viewLocked() []Row {
	out := make([]Row, 0, len(a.view))
	for _, i := range a.view {
		out = append(out, a.rows[i])
	}
	return out
}

func (a *Approvals) selectedLocked() []Row {
	var out []Row
	for _, row := range a.rows {
		if row.Selected {
			out = append(out, row)
		}
	}
	return out
}

// Selected reports how many rows are selected and their total days.
func (a *Approvals) Selected() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return summarize(a.selectedLocked())
}

func summarize(rows []Row) Summary {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Days)
	}
	return Summary{Count: len(rows), Days: total}
}

// SubmitSelected approves the selected rows as one batch. An empty
// selection is rejected locally. On failure the selections are kept.
func (a *Approvals) SubmitSelected(ctx context.Context) error {
	a.mu.Lock()
	if a.submitting {
		a.mu.Unlock()
		return masterdata.ErrSubmitInFlight
	}
	selected := a.selectedLocked()
	if len(selected) == 0 {
		a.mu.Unlock()
		err := validation.New("selection", "select at least one leave to approve")
		notify.Warning(a.notifier, "Select at least one leave to approve")
		return err
	}
	a.submitting = true
	a.mu.Unlock()

	batch := make([]Approval, 0, len(selected))
	for _, row := range selected {
		batch = append(batch, row.approval())
	}

	res, err := a.gw.Post(ctx, ApprovePath, nil, batch)
	if err == nil {
		err = res.Err()
	}

	a.mu.Lock()
	a.submitting = false
	a.mu.Unlock()

	if err != nil {
		notify.Error(a.notifier, gateway.UserMessage(err))
		return err
	}

	message := strings.TrimSpace(res.Message)
	if message == "" {
		message = fmt.Sprintf("%d leave(s) approved successfully", len(batch))
	}
	notify.Success(a.notifier, message)

	if err := a.refresh(ctx); err != nil {
		slog.Warn("reload after approval failed", "err", err)
	}
	return nil
}

func (a *Approvals) Snapshot() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return View{
		Query:      a.query,
		Total:      len(a.rows),
		Rows:       a.viewLocked(),
		Selected:   summarize(a.selectedLocked()),
		Submitting: a.submitting,
	}
}

// Table projects the filtered view for export.
func (a *Approvals) Table() export.Table {
	a.mu.Lock()
	rows := a.viewLocked()
	a.mu.Unlock()

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{row.EmpCode, row.EmpName, row.LeaveType, row.FromDate, row.ToDate, row.Days.String()})
	}
	return export.Table{
		Title:    "Pending Leave Approvals",
		FileName: "pending-leaves",
		Headers:  []string{"Employee Code", "Employee Name", "Leave Type", "From", "To", "Days"},
		Rows:     out,
	}
}
