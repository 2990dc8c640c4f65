package masterdata

import (
	"encoding/json"
	"strconv"
	"strings"

	"hrconsole/internal/gateway"
)

// Record is one row of an entity table as the gateway returned it.
type Record = gateway.Row

// Draft holds the raw form inputs, keyed like the record fields.
type Draft map[string]string

func (d Draft) clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Text renders a record value the way a form input would hold it.
func Text(rec Record, key string) string {
	return stringify(rec[key])
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// RecordID returns the identity of rec, or "" when it is unset or zero.
func RecordID(def Definition, rec Record) string {
	id := strings.TrimSpace(Text(rec, def.IDField))
	if isZeroID(id) {
		return ""
	}
	return id
}

func isZeroID(id string) bool {
	if id == "" {
		return true
	}
	if n, err := strconv.ParseFloat(id, 64); err == nil && n == 0 {
		return true
	}
	return false
}

// idValue sends an identity back with the JSON type the list held it in, so
// a string code like "01" is not turned into the number 1.
func idValue(raw any, id string) any {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v
	case nil:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			return json.Number(strconv.FormatInt(n, 10))
		}
		return id
	default:
		return json.Number(id)
	}
}

func boolValue(raw string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && parsed
}
