package record

import "strings"

// FilterByName keeps records whose name contains query, ignoring case.
// Every result keeps its index in the unfiltered list so that edit and delete
// actions address the right record.
func FilterByName(records []Record, query string) []Indexed {
	needle := strings.ToLower(query)
	out := make([]Indexed, 0, len(records))
	for i, r := range records {
		if needle == "" || strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, Indexed{Index: i, Record: r})
		}
	}
	return out
}
