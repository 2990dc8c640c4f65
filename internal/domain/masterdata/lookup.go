package masterdata

import (
	"context"
	"sort"
	"strings"
)

// CollegeMap resolves normalized college codes to display names.
type CollegeMap map[string]string

type College struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NormalizeCode strips leading zeros; an all-zero code becomes "0".
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	trimmed := strings.TrimLeft(code, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// Name returns the college name, falling back to the raw code.
func (m CollegeMap) Name(code string) string {
	if name, ok := m[NormalizeCode(code)]; ok && name != "" {
		return name
	}
	return code
}

func (m CollegeMap) Options() []College {
	out := make([]College, 0, len(m))
	for code, name := range m {
		out = append(out, College{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Code < out[j].Code
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LoadColleges fetches the college list once per screen load.
func LoadColleges(ctx context.Context, gw Gateway) (CollegeMap, error) {
	rows, err := gw.List(ctx, CollegeListPath, nil)
	if err != nil {
		return CollegeMap{}, err
	}
	out := make(CollegeMap, len(rows))
	for _, row := range rows {
		code := NormalizeCode(Text(row, "collegeCode"))
		if code == "" {
			continue
		}
		out[code] = strings.TrimSpace(Text(row, "collegeName"))
	}
	return out, nil
}
