package tabular

import (
	"sort"
	"strings"
)

// Comparator orders two records; it follows the strings.Compare convention.
type Comparator func(a, b Record) int

// BuildComparator returns a comparator for the given sort state, or nil when
// no reordering should happen. A nil comparator means "preserve current
// order": callers must skip the sort step entirely rather than sort with a
// no-op, so the original relative order survives the NONE state.
//
// Comparison happens on the lower-cased string form of the sort column's
// value; equal strings compare as equal regardless of direction. A sort
// column outside the declared column set also yields nil.
func BuildComparator(state SortState, columns []Column) Comparator {
	if !state.Active() {
		return nil
	}
	if _, ok := columnNameSet(columns)[state.Column]; !ok {
		return nil
	}

	column := state.Column
	descending := state.Direction == SortDescending

	return func(a, b Record) int {
		result := strings.Compare(
			strings.ToLower(a.StringValue(column)),
			strings.ToLower(b.StringValue(column)),
		)
		if descending {
			return -result
		}
		return result
	}
}

// sortRecords sorts in place with a stable sort so equal keys keep their
// relative order.
func sortRecords(records []Record, cmp Comparator) {
	sort.SliceStable(records, func(i, j int) bool {
		return cmp(records[i], records[j]) < 0
	})
}
