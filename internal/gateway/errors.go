package gateway

import (
	"errors"
	"fmt"
)

const GenericFailureMessage = "The request could not be completed. Please try again."

var ErrNotLoggedIn = errors.New("gateway token not set")

// TransportError is a network failure or a non-2xx response.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway responded with status %d", e.Status)
	}
	return fmt.Sprintf("gateway request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EnvelopeError means the body was not JSON or lacked the expected shape.
type EnvelopeError struct {
	Err error
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("malformed gateway response: %v", e.Err)
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}

// DomainFailure is a well-formed mutation response whose status is not success.
type DomainFailure struct {
	StatusCode int
	Message    string
}

func (e *DomainFailure) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return GenericFailureMessage
}

// UserMessage is the text shown to staff for any gateway error.
func UserMessage(err error) string {
	var domain *DomainFailure
	if errors.As(err, &domain) {
		return domain.Error()
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return "The server could not be reached. Please try again."
	}
	var envelope *EnvelopeError
	if errors.As(err, &envelope) {
		return "The server sent an unexpected response."
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
