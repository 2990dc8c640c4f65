package validation

import (
	"errors"
	"testing"
)

func TestValidatorReportsEachField(t *testing.T) {
	v := NewValidator()
	v.Required("name", "   ")
	v.Numeric("maxDays", "ten")
	v.Numeric("order", "")
	v.Boolean("isPaid", "maybe")
	v.Required("college", "C1")
	v.Numeric("limit", "12.5")
	v.Boolean("active", "")

	err := v.Err()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	want := map[string]string{
		"name":    "is required",
		"maxDays": "must be a number",
		"order":   "is required",
		"isPaid":  "must be true or false",
	}
	if len(verr.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), verr.Issues)
	}
	for _, issue := range verr.Issues {
		if want[issue.Field] != issue.Reason {
			t.Fatalf("unexpected issue %+v", issue)
		}
	}
}

func TestValidatorNoIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "Science")
	v.Numeric("maxDays", "12")
	if err := v.Err(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	err := New("", "select at least one leave")
	if err.Error() != "select at least one leave" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	err = &Error{Issues: []Issue{{Field: "name", Reason: "is required"}, {Field: "code", Reason: "is required"}}}
	if err.Error() != "name is required; code is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
