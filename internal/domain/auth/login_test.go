package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
	"hrconsole/internal/validation"
)

type fakeGateway struct {
	users    map[string]string
	roles    map[string]string
	checks   []string
	logins   int
	loginErr error
	noToken  bool
}

func (f *fakeGateway) Get(ctx context.Context, path string, query url.Values) (gateway.Result, error) {
	name := query.Get("username")
	f.checks = append(f.checks, name)
	if _, ok := f.users[name]; !ok {
		return gateway.Result{Outcome: gateway.Failure, StatusCode: 0, Message: "User not found"}, nil
	}
	return gateway.Result{Outcome: gateway.Success, StatusCode: 1}, nil
}

func (f *fakeGateway) Post(ctx context.Context, path string, query url.Values, body any) (gateway.Result, error) {
	f.logins++
	if f.loginErr != nil {
		return gateway.Result{}, f.loginErr
	}
	creds := body.(map[string]string)
	if f.users[creds["username"]] != creds["password"] {
		return gateway.Result{Outcome: gateway.Failure, Message: "Invalid password"}, nil
	}
	payload := map[string]any{"statusCode": 1, "message": "ok", "token": "gw-token"}
	if role, ok := f.roles[creds["username"]]; ok {
		payload["roleName"] = role
	}
	if f.noToken {
		delete(payload, "token")
	}
	raw, _ := json.Marshal(payload)
	return gateway.Result{Outcome: gateway.Success, StatusCode: 1, Body: gateway.Parsed(raw)}, nil
}

func newLoginGateway() *fakeGateway {
	return &fakeGateway{users: map[string]string{"asha": "s3cret"}}
}

func TestTwoStepLogin(t *testing.T) {
	gw := newLoginGateway()
	rec := &notify.Recorder{}
	login := NewLogin(gw, rec)

	if err := login.SubmitPassword(context.Background(), "s3cret"); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("password before username should fail, got %v", err)
	}
	if err := login.SubmitUsername(context.Background(), "  asha "); err != nil {
		t.Fatalf("username: %v", err)
	}
	if state := login.State(); state.Step != StepPassword || state.Username != "asha" {
		t.Fatalf("unexpected state %+v", state)
	}
	if err := login.SubmitPassword(context.Background(), "s3cret"); err != nil {
		t.Fatalf("password: %v", err)
	}
	if login.State().Step != StepDone || login.Token() != "gw-token" {
		t.Fatalf("expected completed login, got %+v", login.State())
	}
	if login.State().RoleName != DefaultRole {
		t.Fatalf("expected default role, got %q", login.State().RoleName)
	}
	last, _ := rec.Last()
	if last.Level != notify.LevelSuccess {
		t.Fatalf("expected success notification, got %+v", last)
	}

	login.Logout()
	if login.Token() != "" || login.State().Step != StepUsername {
		t.Fatal("logout should reset the flow")
	}
}

func TestUnknownUserStaysOnUsername(t *testing.T) {
	gw := newLoginGateway()
	rec := &notify.Recorder{}
	login := NewLogin(gw, rec)

	err := login.SubmitUsername(context.Background(), "ghost")
	var domain *gateway.DomainFailure
	if !errors.As(err, &domain) {
		t.Fatalf("expected domain failure, got %v", err)
	}
	if login.State().Step != StepUsername {
		t.Fatal("expected to stay on the username step")
	}
	last, _ := rec.Last()
	if last.Message != "User not found" {
		t.Fatalf("unexpected notification %+v", last)
	}
}

func TestWrongPasswordKeepsPasswordStep(t *testing.T) {
	gw := newLoginGateway()
	login := NewLogin(gw, nil)
	_ = login.SubmitUsername(context.Background(), "asha")
	if err := login.SubmitPassword(context.Background(), "nope"); err == nil {
		t.Fatal("expected failure")
	}
	if login.State().Step != StepPassword || login.Token() != "" {
		t.Fatalf("unexpected state %+v", login.State())
	}
	if err := login.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if state := login.State(); state.Step != StepUsername || state.Username != "" {
		t.Fatalf("unexpected state after back %+v", state)
	}
	if err := login.Back(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
}

func TestBlankInputsNeverCall(t *testing.T) {
	gw := newLoginGateway()
	login := NewLogin(gw, nil)
	var verr *validation.Error
	if err := login.SubmitUsername(context.Background(), "   "); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(gw.checks) != 0 {
		t.Fatal("blank username must not reach the gateway")
	}
	_ = login.SubmitUsername(context.Background(), "asha")
	if err := login.SubmitPassword(context.Background(), ""); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.logins != 0 {
		t.Fatal("blank password must not reach the gateway")
	}
}

func TestMissingTokenIsEnvelopeError(t *testing.T) {
	gw := newLoginGateway()
	gw.noToken = true
	login := NewLogin(gw, nil)
	_ = login.SubmitUsername(context.Background(), "asha")
	err := login.SubmitPassword(context.Background(), "s3cret")
	var envErr *gateway.EnvelopeError
	if !errors.As(err, &envErr) {
		t.Fatalf("expected envelope error, got %v", err)
	}
	if login.State().Step != StepPassword {
		t.Fatal("expected to stay on the password step")
	}
}

func TestLoginKeepsGatewayRole(t *testing.T) {
	gw := newLoginGateway()
	gw.roles = map[string]string{"asha": RoleClerk}
	login := NewLogin(gw, nil)
	_ = login.SubmitUsername(context.Background(), "asha")
	if err := login.SubmitPassword(context.Background(), "s3cret"); err != nil {
		t.Fatalf("password: %v", err)
	}
	if login.State().RoleName != RoleClerk {
		t.Fatalf("expected clerk role, got %q", login.State().RoleName)
	}
}
