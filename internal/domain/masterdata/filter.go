package masterdata

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FilterIndices returns, in order, the positions i in [0,n) for which any of
// attrs(i) contains query, ignoring case.
func FilterIndices(n int, query string, attrs func(i int) []string) []int {
	// Casers carry state and must not be shared across goroutines.
	lower := cases.Lower(language.Und)
	needle := lower.String(query)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		for _, attr := range attrs(i) {
			if strings.Contains(lower.String(attr), needle) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// SearchText lists the attributes of rec that the search box matches against.
func SearchText(def Definition, colleges CollegeMap, rec Record) []string {
	out := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		if !f.Searchable {
			continue
		}
		raw := Text(rec, f.Key)
		if f.Kind == KindCollege {
			out = append(out, colleges.Name(raw))
			continue
		}
		out = append(out, raw)
	}
	return out
}

// Filter is the pure filter over a fully fetched list.
func Filter(def Definition, colleges CollegeMap, records []Record, query string) []Record {
	idx := FilterIndices(len(records), query, func(i int) []string {
		return SearchText(def, colleges, records[i])
	})
	out := make([]Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, records[i])
	}
	return out
}
