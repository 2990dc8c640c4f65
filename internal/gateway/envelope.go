package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Row is one record of a list table. Numbers decode as json.Number so ids
// keep their exact text.
type Row map[string]any

type Outcome int

const (
	Failure Outcome = iota
	Success
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// statusSuccess is the only statusCode the gateway uses for success.
const statusSuccess = 1

// Result is a decoded mutation response.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Message    string
	Body       Parsed
}

// Err is nil on success and a *DomainFailure otherwise.
func (r Result) Err() error {
	if r.Outcome == Success {
		return nil
	}
	return &DomainFailure{StatusCode: r.StatusCode, Message: strings.TrimSpace(r.Message)}
}

type listEnvelope struct {
	DataFetch *struct {
		Table json.RawMessage `json:"table"`
	} `json:"dataFetch"`
}

// DecodeTable reads {"dataFetch":{"table":[...]}}. A null table is an empty
// list; a missing dataFetch or table key is an envelope error.
func DecodeTable(p Parsed) ([]Row, error) {
	var env listEnvelope
	if err := json.Unmarshal(p, &env); err != nil {
		return nil, &EnvelopeError{Err: err}
	}
	if env.DataFetch == nil {
		return nil, &EnvelopeError{Err: errors.New("dataFetch missing")}
	}
	raw := bytes.TrimSpace(env.DataFetch.Table)
	if len(raw) == 0 {
		return nil, &EnvelopeError{Err: errors.New("dataFetch.table missing")}
	}
	if bytes.Equal(raw, []byte("null")) {
		return []Row{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, &EnvelopeError{Err: fmt.Errorf("dataFetch.table: %w", err)}
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type statusCode int

func (s *statusCode) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	n, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("statusCode %s is not an integer", string(data))
	}
	*s = statusCode(n)
	return nil
}

type resultEnvelope struct {
	StatusCode *statusCode `json:"statusCode"`
	Message    string      `json:"message"`
}

// DecodeResult reads {"statusCode":n,"message":"..."}.
func DecodeResult(p Parsed) (Result, error) {
	var env resultEnvelope
	if err := json.Unmarshal(p, &env); err != nil {
		return Result{}, &EnvelopeError{Err: err}
	}
	if env.StatusCode == nil {
		return Result{}, &EnvelopeError{Err: errors.New("statusCode missing")}
	}
	res := Result{
		Outcome:    Failure,
		StatusCode: int(*env.StatusCode),
		Message:    env.Message,
		Body:       p,
	}
	if res.StatusCode == statusSuccess {
		res.Outcome = Success
	}
	return res, nil
}

// EncodeTable builds a list envelope. The reference gateway uses it, and it
// doubles as the fixture builder in tests.
func EncodeTable(rows []Row, doubleEncode bool) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	body, err := json.Marshal(map[string]any{"dataFetch": map[string]any{"table": rows}})
	if err != nil {
		return nil, err
	}
	if doubleEncode {
		return json.Marshal(string(body))
	}
	return body, nil
}
