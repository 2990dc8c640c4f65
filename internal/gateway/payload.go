package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Payload is a gateway response body. Some endpoints send the JSON document
// itself, others send it encoded once more as a JSON string.
type Payload interface {
	payload()
}

// Raw is a document that still has to be parsed once more.
type Raw string

// Parsed is a JSON object or array.
type Parsed json.RawMessage

func (Raw) payload()    {}
func (Parsed) payload() {}

var errEmptyBody = errors.New("empty body")

// Classify tags a response body as Raw or Parsed.
func Classify(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &EnvelopeError{Err: errEmptyBody}
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, &EnvelopeError{Err: err}
		}
		return Raw(text), nil
	}
	if !json.Valid(trimmed) {
		return nil, &EnvelopeError{Err: errors.New("invalid json")}
	}
	return Parsed(trimmed), nil
}

// Normalize turns any payload into Parsed. A Raw payload gets exactly one
// extra parse pass.
func Normalize(p Payload) (Parsed, error) {
	switch v := p.(type) {
	case Parsed:
		return v, nil
	case Raw:
		trimmed := bytes.TrimSpace([]byte(v))
		if len(trimmed) == 0 {
			return nil, &EnvelopeError{Err: errEmptyBody}
		}
		if !json.Valid(trimmed) {
			return nil, &EnvelopeError{Err: errors.New("string payload is not json")}
		}
		return Parsed(trimmed), nil
	default:
		return nil, &EnvelopeError{Err: errors.New("missing payload")}
	}
}
