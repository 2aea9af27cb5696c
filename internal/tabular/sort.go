package tabular

// SortDirection enumerates the three states of the column sort toggle.
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
	SortNone       SortDirection = "NONE"
)

// SortState pairs a sort column with a direction. Direction NONE implies no
// active sort column.
type SortState struct {
	Column    string        `json:"column,omitempty"`
	Direction SortDirection `json:"direction"`
}

// NoSort is the unsorted state.
func NoSort() SortState {
	return SortState{Direction: SortNone}
}

// Active reports whether the state names a sort column.
func (s SortState) Active() bool {
	return s.Column != "" && (s.Direction == SortAscending || s.Direction == SortDescending)
}

// Cycle advances the toggle for a column header selection: repeated selection
// of the active column cycles ascending, descending, none; selecting a
// different column resets to ascending.
func (s SortState) Cycle(column string) SortState {
	if column == "" {
		return s
	}
	if s.Column != column || !s.Active() {
		return SortState{Column: column, Direction: SortAscending}
	}
	if s.Direction == SortAscending {
		return SortState{Column: column, Direction: SortDescending}
	}
	return NoSort()
}
