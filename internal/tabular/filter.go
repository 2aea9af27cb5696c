package tabular

import (
	"sort"
	"strings"
)

// ActiveFilter constrains one column to a set of permitted string values.
// Values use OR semantics within the filter; multiple filters combine with
// AND across columns.
type ActiveFilter struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// FilterSet maintains the active per-column filters. A column appears at most
// once; setting an empty value set removes the entry instead of retaining it.
type FilterSet struct {
	filters []ActiveFilter
}

// Set replaces the value set for a column. Duplicate values collapse and an
// empty set removes the filter entirely.
func (s *FilterSet) Set(column string, values []string) {
	column = strings.TrimSpace(column)
	if column == "" {
		return
	}

	deduped := dedupeValues(values)
	if len(deduped) == 0 {
		s.Remove(column)
		return
	}

	for i, f := range s.filters {
		if f.Column == column {
			s.filters[i].Values = deduped
			return
		}
	}
	s.filters = append(s.filters, ActiveFilter{Column: column, Values: deduped})
}

// Remove drops the filter for a column, if present.
func (s *FilterSet) Remove(column string) {
	for i, f := range s.filters {
		if f.Column == column {
			s.filters = append(s.filters[:i], s.filters[i+1:]...)
			return
		}
	}
}

// Clear removes every active filter.
func (s *FilterSet) Clear() {
	s.filters = nil
}

// Values returns the selected values for a column, or nil when inactive.
func (s *FilterSet) Values(column string) []string {
	for _, f := range s.filters {
		if f.Column == column {
			clone := make([]string, len(f.Values))
			copy(clone, f.Values)
			return clone
		}
	}
	return nil
}

// Active returns a copy of the active filters in insertion order.
func (s *FilterSet) Active() []ActiveFilter {
	if len(s.filters) == 0 {
		return nil
	}
	result := make([]ActiveFilter, len(s.filters))
	for i, f := range s.filters {
		values := make([]string, len(f.Values))
		copy(values, f.Values)
		result[i] = ActiveFilter{Column: f.Column, Values: values}
	}
	return result
}

// Empty reports whether no filter is active.
func (s *FilterSet) Empty() bool {
	return len(s.filters) == 0
}

func dedupeValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
