package validation

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is a local precondition failure. It is reported before any gateway
// call is made.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Reason)
			continue
		}
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return strings.Join(parts, "; ")
}

// New builds a single-issue error, used for preconditions that are not tied to
// a form field (an empty selection, for example).
func New(field, reason string) *Error {
	return &Error{Issues: []Issue{{Field: field, Reason: reason}}}
}

var validate = validator.New()

type Validator struct {
	issues []Issue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]Issue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, Issue{Field: field, Reason: reason})
}

// Required rejects empty and whitespace-only values.
func (v *Validator) Required(field, value string) bool {
	if validate.Var(strings.TrimSpace(value), "required") != nil {
		v.Add(field, "is required")
		return false
	}
	return true
}

// Numeric requires a present, numeric value.
func (v *Validator) Numeric(field, value string) bool {
	trimmed := strings.TrimSpace(value)
	if validate.Var(trimmed, "required") != nil {
		v.Add(field, "is required")
		return false
	}
	if validate.Var(trimmed, "numeric") != nil {
		v.Add(field, "must be a number")
		return false
	}
	return true
}

// Boolean accepts an empty value as false; anything else must parse.
func (v *Validator) Boolean(field, value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return true
	}
	if validate.Var(trimmed, "boolean") != nil {
		v.Add(field, "must be true or false")
		return false
	}
	return true
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []Issue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]Issue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return out
}

// Err returns nil when no issues were recorded.
func (v *Validator) Err() error {
	if !v.HasIssues() {
		return nil
	}
	return &Error{Issues: v.Issues()}
}
