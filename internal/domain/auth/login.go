package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"

	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
	"hrconsole/internal/validation"
)

const (
	CheckUserPath = "/login/check"
	LoginPath     = "/login"
)

type Step string

const (
	StepUsername Step = "username"
	StepPassword Step = "password"
	StepDone     Step = "done"
)

var (
	ErrWrongStep     = errors.New("login is not at that step")
	ErrLoginInFlight = errors.New("login request already in flight")
	errTokenMissing  = errors.New("login response carried no token")
)

type Gateway interface {
	Get(ctx context.Context, path string, query url.Values) (gateway.Result, error)
	Post(ctx context.Context, path string, query url.Values, body any) (gateway.Result, error)
}

type LoginState struct {
	Step       Step   `json:"step"`
	Username   string `json:"username,omitempty"`
	RoleName   string `json:"roleName,omitempty"`
	Submitting bool   `json:"submitting"`
}

// Login walks the username step, then the password step. The gateway token
// is only available once the password step succeeds.
type Login struct {
	gw       Gateway
	notifier notify.Notifier

	mu         sync.Mutex
	step       Step
	username   string
	roleName   string
	token      string
	submitting bool
}

func NewLogin(gw Gateway, notifier notify.Notifier) *Login {
	return &Login{gw: gw, notifier: notifier, step: StepUsername}
}

func (l *Login) State() LoginState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoginState{Step: l.step, Username: l.username, RoleName: l.roleName, Submitting: l.submitting}
}

// Token returns the gateway token after a completed login.
func (l *Login) Token() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token
}

func (l *Login) begin(step Step) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting {
		return ErrLoginInFlight
	}
	if l.step != step {
		return ErrWrongStep
	}
	l.submitting = true
	return nil
}

func (l *Login) end() {
	l.mu.Lock()
	l.submitting = false
	l.mu.Unlock()
}

// SubmitUsername asks the gateway whether the user exists and, if so,
// advances to the password step.
func (l *Login) SubmitUsername(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	v := validation.NewValidator()
	v.Required("username", username)
	if err := v.Err(); err != nil {
		notify.Warning(l.notifier, "Enter your username")
		return err
	}
	if err := l.begin(StepUsername); err != nil {
		return err
	}
	defer l.end()

	res, err := l.gw.Get(ctx, CheckUserPath, url.Values{"username": {username}})
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		notify.Error(l.notifier, gateway.UserMessage(err))
		return err
	}

	l.mu.Lock()
	l.step = StepPassword
	l.username = username
	l.mu.Unlock()
	return nil
}

type loginResponse struct {
	Token    string `json:"token"`
	RoleName string `json:"roleName"`
}

// SubmitPassword posts the credentials. A failure keeps the password step
// so the user can retry.
func (l *Login) SubmitPassword(ctx context.Context, password string) error {
	v := validation.NewValidator()
	v.Required("password", password)
	if err := v.Err(); err != nil {
		notify.Warning(l.notifier, "Enter your password")
		return err
	}
	if err := l.begin(StepPassword); err != nil {
		return err
	}
	defer l.end()

	l.mu.Lock()
	username := l.username
	l.mu.Unlock()

	body := map[string]string{"username": username, "password": password}
	res, err := l.gw.Post(ctx, LoginPath, nil, body)
	if err == nil {
		err = res.Err()
	}
	var token, role string
	if err == nil {
		var decoded loginResponse
		if jsonErr := json.Unmarshal(res.Body, &decoded); jsonErr != nil {
			err = &gateway.EnvelopeError{Err: jsonErr}
		} else if strings.TrimSpace(decoded.Token) == "" {
			err = &gateway.EnvelopeError{Err: errTokenMissing}
		}
		token = strings.TrimSpace(decoded.Token)
		role = strings.TrimSpace(decoded.RoleName)
	}
	if err != nil {
		notify.Error(l.notifier, gateway.UserMessage(err))
		return err
	}

	l.mu.Lock()
	l.step = StepDone
	l.token = token
	l.roleName = role
	if l.roleName == "" {
		l.roleName = DefaultRole
	}
	l.mu.Unlock()
	notify.Success(l.notifier, "Welcome, "+username)
	return nil
}

// Back returns from the password step to the username step.
func (l *Login) Back() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting {
		return ErrLoginInFlight
	}
	if l.step != StepPassword {
		return ErrWrongStep
	}
	l.step = StepUsername
	l.username = ""
	return nil
}

// Logout forgets the gateway token and starts over.
func (l *Login) Logout() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.step = StepUsername
	l.username = ""
	l.roleName = ""
	l.token = ""
}
