package backend

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
	"hrconsole/internal/validation"
)

type column struct {
	key  string
	name string
	kind masterdata.Kind
}

// selectExpr casts numeric columns so rows scan as float64.
func (c column) selectExpr() string {
	if c.kind == masterdata.KindNumber {
		return c.name + "::float8 AS " + c.name
	}
	return c.name
}

// entityTable maps an entity definition onto its table.
type entityTable struct {
	def      masterdata.Definition
	table    string
	idColumn string
	columns  []column
	// uniqueKey is unique per college, or globally for entities without one.
	uniqueKey string
}

var tableNames = map[string]string{
	masterdata.Category.Name:   "categories",
	masterdata.Department.Name: "departments",
	masterdata.Deduction.Name:  "deductions",
	masterdata.LeaveType.Name:  "leave_types",
}

var uniqueKeys = map[string]string{
	masterdata.Category.Name:   "categoryName",
	masterdata.Department.Name: "deptName",
	masterdata.Deduction.Name:  "deductionName",
	masterdata.LeaveType.Name:  "lvCode",
}

func tableFor(entity string) (entityTable, error) {
	def, err := masterdata.Lookup(entity)
	if err != nil {
		return entityTable{}, err
	}
	t := entityTable{
		def:       def,
		table:     tableNames[def.Name],
		idColumn:  snakeCase(def.IDField),
		uniqueKey: uniqueKeys[def.Name],
	}
	for _, f := range def.Fields {
		t.columns = append(t.columns, column{key: f.Key, name: snakeCase(f.Key), kind: f.Kind})
	}
	return t, nil
}

func snakeCase(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// normalize validates a posted record and converts its values to the types
// the stores keep: strings, bools and float64 numbers.
func (t entityTable) normalize(body gateway.Row) (gateway.Row, error) {
	v := validation.NewValidator()
	out := gateway.Row{}
	for _, f := range t.def.Fields {
		raw := strings.TrimSpace(masterdata.Text(body, f.Key))
		switch f.Kind {
		case masterdata.KindNumber:
			if raw == "" {
				if f.Required {
					v.Add(f.Label, "is required")
				}
				out[f.Key] = nil
				continue
			}
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				v.Add(f.Label, "must be a number")
				continue
			}
			if n < 0 {
				v.Add(f.Label, "must not be negative")
				continue
			}
			out[f.Key] = n
		case masterdata.KindBool:
			if raw == "" {
				out[f.Key] = false
				continue
			}
			b, err := strconv.ParseBool(raw)
			if err != nil {
				v.Add(f.Label, "must be true or false")
				continue
			}
			out[f.Key] = b
		default:
			if f.Required {
				v.Required(f.Label, raw)
			}
			out[f.Key] = raw
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseID reads a numeric identity from its query or body representation.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func rowID(t entityTable, row gateway.Row) int64 {
	switch v := row[t.def.IDField].(type) {
	case int64:
		return v
	case json.Number:
		id, _ := v.Int64()
		return id
	default:
		id, _ := parseID(masterdata.Text(row, t.def.IDField))
		return id
	}
}

func sameRecord(t entityTable, a, b gateway.Row) bool {
	if t.uniqueKey == "" {
		return false
	}
	if t.def.UsesColleges() &&
		masterdata.NormalizeCode(masterdata.Text(a, "collegeCode")) != masterdata.NormalizeCode(masterdata.Text(b, "collegeCode")) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(masterdata.Text(a, t.uniqueKey)), strings.TrimSpace(masterdata.Text(b, t.uniqueKey)))
}
