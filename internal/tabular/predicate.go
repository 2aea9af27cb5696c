package tabular

import "strings"

// Predicate decides whether a record survives the active filters and search
// term of a view.
type Predicate func(Record) bool

// BuildPredicate composes the property filters and free-text search term into
// a single predicate over records.
//
// Semantics: a record passes iff it passes every active filter (AND across
// columns), where a single filter passes when the stringified column value is
// a member of the filter's value set (OR within a column). A filter naming a
// column outside the declared column set never matches. When a trimmed search
// term is present the record must additionally contain it, case
// insensitively, in at least one declared column's stringified value.
//
// With no active filters and no search term the predicate accepts everything;
// callers that need to distinguish that state should check the inputs before
// building.
func BuildPredicate(filters []ActiveFilter, searchTerm string, columns []Column) Predicate {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	declared := columnNameSet(columns)

	active := make([]ActiveFilter, 0, len(filters))
	for _, f := range filters {
		if len(f.Values) == 0 {
			continue
		}
		active = append(active, f)
	}

	if len(active) == 0 && term == "" {
		return func(Record) bool { return true }
	}

	valueSets := make([]map[string]struct{}, len(active))
	for i, f := range active {
		set := make(map[string]struct{}, len(f.Values))
		for _, v := range f.Values {
			set[v] = struct{}{}
		}
		valueSets[i] = set
	}

	return func(rec Record) bool {
		for i, f := range active {
			if _, ok := declared[f.Column]; !ok {
				return false
			}
			if _, ok := valueSets[i][rec.StringValue(f.Column)]; !ok {
				return false
			}
		}

		if term == "" {
			return true
		}

		for _, col := range columns {
			if strings.Contains(strings.ToLower(rec.StringValue(col.Name)), term) {
				return true
			}
		}
		return false
	}
}
