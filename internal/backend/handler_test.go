package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hrconsole/internal/domain/audit"
	"hrconsole/internal/domain/auth"
	"hrconsole/internal/domain/leave"
	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
	"hrconsole/internal/transport/http/middleware"
)

const testSecret = "gateway-secret"

func newTestGateway(t *testing.T, doubleEncode bool) (*httptest.Server, *MemStore) {
	t.Helper()
	store := NewMemStore()
	if err := SeedDemo(context.Background(), store, "admin", "admin-pass"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	clerkHash, _ := auth.HashPassword("clerk-pass")
	store.AddUser(User{Username: "clerk", PasswordHash: clerkHash, RoleName: auth.RoleViewer})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Auth(testSecret))
	h := NewHandler(store, testSecret, time.Hour, doubleEncode)
	h.Audit = audit.NewMemoryLog(100)
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func login(t *testing.T, client *gateway.Client, username, password string) *gateway.Client {
	t.Helper()
	res, err := client.Post(context.Background(), auth.LoginPath, nil, map[string]string{"username": username, "password": password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Outcome != gateway.Success {
		t.Fatalf("login failed: %s", res.Message)
	}
	var body struct {
		Token    string `json:"token"`
		RoleName string `json:"roleName"`
	}
	if err := json.Unmarshal(res.Body, &body); err != nil || body.Token == "" {
		t.Fatalf("token missing: %v", err)
	}
	return client.WithToken(body.Token)
}

func TestCheckUserAndLogin(t *testing.T) {
	srv, _ := newTestGateway(t, false)
	client, err := gateway.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	res, err := client.Get(context.Background(), auth.CheckUserPath, url.Values{"username": {"Admin"}})
	if err != nil || res.Outcome != gateway.Success {
		t.Fatalf("expected verified user, got %+v %v", res, err)
	}
	res, _ = client.Get(context.Background(), auth.CheckUserPath, url.Values{"username": {"ghost"}})
	if res.Outcome != gateway.Failure || res.Message != "User not found" {
		t.Fatalf("expected unknown user, got %+v", res)
	}

	res, _ = client.Post(context.Background(), auth.LoginPath, nil, map[string]string{"username": "admin", "password": "wrong"})
	if res.Outcome != gateway.Failure {
		t.Fatal("wrong password should fail")
	}
	login(t, client, "admin", "admin-pass")
}

func TestListRequiresToken(t *testing.T) {
	srv, _ := newTestGateway(t, false)
	client, _ := gateway.New(srv.URL, 5*time.Second)

	_, err := client.List(context.Background(), masterdata.Category.Endpoints.List, nil)
	var transport *gateway.TransportError
	if !errors.As(err, &transport) || transport.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 transport error, got %v", err)
	}
}

func TestEntityLifecycleOverHTTP(t *testing.T) {
	for _, double := range []bool{false, true} {
		srv, _ := newTestGateway(t, double)
		client, _ := gateway.New(srv.URL, 5*time.Second)
		client = login(t, client, "admin", "admin-pass")
		ctx := context.Background()
		def := masterdata.Department

		before, err := client.List(ctx, def.Endpoints.List, nil)
		if err != nil {
			t.Fatalf("double=%v list: %v", double, err)
		}

		res, err := client.Post(ctx, def.Endpoints.Save, nil, map[string]any{"deptCode": 0, "collegeCode": "2", "deptName": "Chemistry", "deptShortName": "CHEM"})
		if err != nil || res.Outcome != gateway.Success {
			t.Fatalf("double=%v save: %+v %v", double, res, err)
		}
		var saved struct {
			DeptCode json.Number `json:"deptCode"`
		}
		if err := json.Unmarshal(res.Body, &saved); err != nil || saved.DeptCode == "" {
			t.Fatalf("double=%v save response carried no id: %v", double, err)
		}
		newID := saved.DeptCode.String()

		res, _ = client.Post(ctx, def.Endpoints.Save, nil, map[string]any{"deptCode": 0, "collegeCode": "02", "deptName": "chemistry"})
		if res.Outcome != gateway.Failure || res.Message != "Department already exists" {
			t.Fatalf("double=%v expected duplicate failure, got %+v", double, res)
		}

		res, _ = client.Post(ctx, def.Endpoints.Update, nil, map[string]any{"deptCode": json.Number(newID), "collegeCode": "2", "deptName": "Applied Chemistry"})
		if res.Outcome != gateway.Success {
			t.Fatalf("double=%v update: %+v", double, res)
		}

		after, _ := client.List(ctx, def.Endpoints.List, nil)
		if len(after) != len(before)+1 {
			t.Fatalf("double=%v expected one more row, got %d vs %d", double, len(after), len(before))
		}
		if masterdata.Text(after[len(after)-1], "deptName") != "Applied Chemistry" {
			t.Fatalf("double=%v update not visible: %v", double, after[len(after)-1])
		}

		res, err = client.Delete(ctx, def.Endpoints.Delete, url.Values{"deptCode": {newID}})
		if err != nil || res.Outcome != gateway.Success {
			t.Fatalf("double=%v delete: %+v %v", double, res, err)
		}
		res, _ = client.Delete(ctx, def.Endpoints.Delete, url.Values{"deptCode": {newID}})
		if res.Outcome != gateway.Failure {
			t.Fatalf("double=%v second delete should fail", double)
		}
	}
}

func TestViewerCannotMutate(t *testing.T) {
	srv, _ := newTestGateway(t, false)
	client, _ := gateway.New(srv.URL, 5*time.Second)
	client = login(t, client, "clerk", "clerk-pass")

	if _, err := client.List(context.Background(), masterdata.Category.Endpoints.List, nil); err != nil {
		t.Fatalf("viewer should read: %v", err)
	}
	res, err := client.Post(context.Background(), masterdata.Category.Endpoints.Save, nil, map[string]any{"id": 0, "collegeCode": "1", "categoryName": "Sports"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Outcome != gateway.Failure {
		t.Fatal("viewer save should be rejected")
	}
}

func TestPendingAndApprove(t *testing.T) {
	srv, store := newTestGateway(t, true)
	client, _ := gateway.New(srv.URL, 5*time.Second)
	client = login(t, client, "admin", "admin-pass")
	ctx := context.Background()

	rows, err := client.List(ctx, leave.PendingPath, nil)
	if err != nil || len(rows) != 3 {
		t.Fatalf("pending: %d %v", len(rows), err)
	}
	employees, err := client.List(ctx, leave.EmployeeListPath, nil)
	if err != nil || len(employees) != 3 {
		t.Fatalf("employees: %d %v", len(employees), err)
	}

	joined := leave.Join(rows, employees)
	batch := []leave.Approval{{
		EmpCode: joined[0].EmpCode, EmpName: joined[0].EmpName, LeaveType: joined[0].LeaveType,
		FromDate: joined[0].FromDate, ToDate: joined[0].ToDate, NoOfDays: json.Number(joined[0].Days.String()),
	}}
	res, err := client.Post(ctx, leave.ApprovePath, nil, batch)
	if err != nil || res.Outcome != gateway.Success {
		t.Fatalf("approve: %+v %v", res, err)
	}
	pending, _ := store.PendingLeaves(ctx)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending after approval, got %d", len(pending))
	}

	res, _ = client.Post(ctx, leave.ApprovePath, nil, []leave.Approval{})
	if res.Outcome != gateway.Failure {
		t.Fatal("empty batch should fail")
	}
}

func TestMutationsAreAudited(t *testing.T) {
	srv, _ := newTestGateway(t, false)
	base, _ := gateway.New(srv.URL, 5*time.Second)
	admin := login(t, base, "admin", "admin-pass")
	ctx := context.Background()

	res, err := admin.Post(ctx, masterdata.Category.Endpoints.Save, nil, map[string]any{"id": 0, "collegeCode": "1", "categoryName": "Sports"})
	if err != nil || res.Outcome != gateway.Success {
		t.Fatalf("save: %+v %v", res, err)
	}

	rows, err := admin.List(ctx, AuditListPath, url.Values{"entity": {masterdata.Category.Name}})
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one audit row, got %d", len(rows))
	}
	if masterdata.Text(rows[0], "actor") != "admin" || masterdata.Text(rows[0], "action") != audit.ActionCreate {
		t.Fatalf("unexpected audit row %v", rows[0])
	}

	viewer := login(t, base, "clerk", "clerk-pass")
	_, err = viewer.List(ctx, AuditListPath, nil)
	var transport *gateway.TransportError
	if !errors.As(err, &transport) || transport.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %v", err)
	}
}
