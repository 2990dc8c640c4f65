package leave

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"

	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
	"hrconsole/internal/validation"
)

type fakeGateway struct {
	mu       sync.Mutex
	tables   map[string][]gateway.Row
	listErrs map[string]error
	lists    map[string]int
	posts    [][]map[string]any
	result   gateway.Result
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		tables: map[string][]gateway.Row{
			PendingPath:      pendingRows(),
			EmployeeListPath: employeeRows(),
		},
		listErrs: map[string]error{},
		lists:    map[string]int{},
		result:   gateway.Result{Outcome: gateway.Success, StatusCode: 1},
	}
}

func (f *fakeGateway) List(ctx context.Context, path string, query url.Values) ([]gateway.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[path]++
	if err := f.listErrs[path]; err != nil {
		return nil, err
	}
	return append([]gateway.Row(nil), f.tables[path]...), nil
}

func (f *fakeGateway) Post(ctx context.Context, path string, query url.Values, body any) (gateway.Result, error) {
	encoded, _ := json.Marshal(body)
	var decoded []map[string]any
	_ = json.Unmarshal(encoded, &decoded)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, decoded)
	return f.result, nil
}

func (f *fakeGateway) loads(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[path]
}

func pendingRows() []gateway.Row {
	return []gateway.Row{
		{"leaveId": json.Number("11"), "empCode": "E1", "leaveType": "Casual", "fromDate": "2025-03-01", "toDate": "2025-03-02", "noOfDays": json.Number("2")},
		{"leaveId": json.Number("12"), "empCode": "E2", "leaveType": "Sick", "fromDate": "2025-03-03", "toDate": "2025-03-03", "noOfDays": json.Number("0.5")},
		{"leaveId": json.Number("13"), "empCode": "E3", "leaveType": "Casual", "fromDate": "2025-03-04", "toDate": "2025-03-06", "noOfDays": json.Number("3")},
		{"leaveId": json.Number("14"), "empCode": "E9", "leaveType": "Earned", "fromDate": "2025-03-10", "toDate": "2025-03-11"},
		{"leaveId": json.Number("15"), "empCode": "E1", "leaveType": "Sick", "fromDate": "2025-03-12", "toDate": "2025-03-12", "noOfDays": "1"},
	}
}

func employeeRows() []gateway.Row {
	return []gateway.Row{
		{"empCode": "E1", "empName": "Asha Rao"},
		{"empCode": "E2", "empName": "Vikram Sen"},
		{"empCode": "E3", "empName": "Meera Iyer"},
	}
}

func TestJoinResolvesNames(t *testing.T) {
	rows := Join(pendingRows(), employeeRows())
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0].EmpName != "Asha Rao" || rows[3].EmpName != UnknownEmployee {
		t.Fatalf("unexpected names %q %q", rows[0].EmpName, rows[3].EmpName)
	}
	if rows[3].Days.String() != "2" {
		t.Fatalf("expected days computed from dates, got %s", rows[3].Days)
	}
	for _, row := range rows {
		if row.Selected {
			t.Fatal("rows must start unselected")
		}
	}
}

func TestJoinAssignsUniqueIDs(t *testing.T) {
	leaves := []gateway.Row{
		{"empCode": "E1", "leaveType": "Casual"},
		{"leaveId": "7", "empCode": "E2"},
		{"leaveId": "7", "empCode": "E3"},
	}
	rows := Join(leaves, nil)
	seen := map[string]bool{}
	for _, row := range rows {
		if seen[row.ID] {
			t.Fatalf("duplicate id %q", row.ID)
		}
		seen[row.ID] = true
		if row.EmpName != UnknownEmployee {
			t.Fatalf("expected unknown employee, got %q", row.EmpName)
		}
	}
}

func TestBatchApprovalTwoOfFive(t *testing.T) {
	gw := newFakeGateway()
	rec := &notify.Recorder{}
	screen := NewApprovals(gw, rec)
	if err := screen.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := screen.Toggle("12"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := screen.Toggle("14"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	summary := screen.Selected()
	if summary.Count != 2 || summary.Days.String() != "2.5" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if err := screen.SubmitSelected(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(gw.posts) != 1 {
		t.Fatalf("expected one approval call, got %d", len(gw.posts))
	}
	batch := gw.posts[0]
	if len(batch) != 2 {
		t.Fatalf("expected two approvals, got %v", batch)
	}
	first := batch[0]
	if first["empCode"] != "E2" || first["empName"] != "Vikram Sen" || first["leaveType"] != "Sick" ||
		first["fromDate"] != "2025-03-03" || first["toDate"] != "2025-03-03" || first["noOfDays"] != 0.5 {
		t.Fatalf("unexpected first approval %v", first)
	}
	if batch[1]["empCode"] != "E9" || batch[1]["empName"] != UnknownEmployee || batch[1]["noOfDays"] != float64(2) {
		t.Fatalf("unexpected second approval %v", batch[1])
	}
	if len(first) != 6 {
		t.Fatalf("approval should carry only projected fields, got %v", first)
	}

	rows := screen.Rows()
	if len(rows) != 5 {
		t.Fatalf("expected 5 refetched rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Selected {
			t.Fatalf("row %s still selected after approval", row.ID)
		}
	}
	if gw.loads(PendingPath) != 2 {
		t.Fatalf("expected a reload after approval, got %d loads", gw.loads(PendingPath))
	}
	last, _ := rec.Last()
	if last.Level != notify.LevelSuccess {
		t.Fatalf("expected success notification, got %+v", last)
	}
}

func TestEmptySelectionNeverCalls(t *testing.T) {
	gw := newFakeGateway()
	rec := &notify.Recorder{}
	screen := NewApprovals(gw, rec)
	_ = screen.Load(context.Background())

	err := screen.SubmitSelected(context.Background())
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(gw.posts) != 0 {
		t.Fatal("empty selection must not call the gateway")
	}
	if len(rec.All()) != 1 {
		t.Fatalf("expected one notice, got %d", len(rec.All()))
	}
}

func TestFailedApprovalKeepsSelection(t *testing.T) {
	gw := newFakeGateway()
	gw.result = gateway.Result{Outcome: gateway.Failure, StatusCode: 0, Message: "Approval window closed"}
	rec := &notify.Recorder{}
	screen := NewApprovals(gw, rec)
	_ = screen.Load(context.Background())
	_ = screen.Toggle("11")
	_ = screen.Toggle("13")

	err := screen.SubmitSelected(context.Background())
	var domain *gateway.DomainFailure
	if !errors.As(err, &domain) {
		t.Fatalf("expected domain failure, got %v", err)
	}
	if got := screen.Selected().Count; got != 2 {
		t.Fatalf("selections should be kept, got %d", got)
	}
	if gw.loads(PendingPath) != 1 {
		t.Fatal("failed approval must not reload")
	}
	last, _ := rec.Last()
	if last.Message != "Approval window closed" {
		t.Fatalf("unexpected notification %+v", last)
	}
}

func TestFilterAndSelectAll(t *testing.T) {
	screen := NewApprovals(newFakeGateway(), nil)
	_ = screen.Load(context.Background())

	screen.SetQuery("SICK")
	view := screen.Snapshot()
	if view.Total != 5 || len(view.Rows) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
	screen.SelectAll(true)
	if got := screen.Selected(); got.Count != 2 || got.Days.String() != "1.5" {
		t.Fatalf("select all should cover the filtered rows only, got %+v", got)
	}

	screen.SetQuery("asha")
	if rows := screen.Snapshot().Rows; len(rows) != 2 || rows[0].ID != "11" || rows[1].ID != "15" {
		t.Fatalf("unexpected rows for name query %+v", rows)
	}
	screen.SetQuery("e9")
	if rows := screen.Snapshot().Rows; len(rows) != 1 || rows[0].EmpName != UnknownEmployee {
		t.Fatalf("unexpected rows for code query %+v", rows)
	}

	screen.SetQuery("")
	screen.SelectAll(false)
	if screen.Selected().Count != 0 {
		t.Fatal("expected nothing selected")
	}
	if err := screen.Toggle("99"); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestPendingLoadFailureEmptiesRows(t *testing.T) {
	gw := newFakeGateway()
	rec := &notify.Recorder{}
	screen := NewApprovals(gw, rec)
	_ = screen.Load(context.Background())

	gw.listErrs[PendingPath] = &gateway.TransportError{Status: 502}
	if err := screen.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(screen.Rows()) != 0 || len(screen.Snapshot().Rows) != 0 {
		t.Fatal("rows should be empty after a failed load")
	}
	if len(rec.All()) != 1 {
		t.Fatalf("expected one notification, got %d", len(rec.All()))
	}
}

func TestEmployeeFailureShowsUnknown(t *testing.T) {
	gw := newFakeGateway()
	gw.listErrs[EmployeeListPath] = &gateway.EnvelopeError{Err: errors.New("bad table")}
	screen := NewApprovals(gw, nil)
	if err := screen.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, row := range screen.Rows() {
		if row.EmpName != UnknownEmployee {
			t.Fatalf("expected unknown names, got %q", row.EmpName)
		}
	}
}

func TestApprovalTable(t *testing.T) {
	screen := NewApprovals(newFakeGateway(), nil)
	_ = screen.Load(context.Background())
	screen.SetQuery("casual")
	table := screen.Table()
	if len(table.Rows) != 2 || table.Rows[1][1] != "Meera Iyer" || table.Rows[1][5] != "3" {
		t.Fatalf("unexpected table %+v", table)
	}
}

func TestSubmitGateSharesSentinel(t *testing.T) {
	screen := NewApprovals(newFakeGateway(), nil)
	screen.submitting = true
	if err := screen.SubmitSelected(context.Background()); !errors.Is(err, masterdata.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
}
