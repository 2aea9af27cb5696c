package tabular

import "testing"

func TestBuildComparator_NoneYieldsNil(t *testing.T) {
	if cmp := BuildComparator(NoSort(), assetColumns); cmp != nil {
		t.Fatalf("expected nil comparator for direction NONE")
	}
}

func TestBuildComparator_UndeclaredColumnYieldsNil(t *testing.T) {
	state := SortState{Column: "owner", Direction: SortAscending}
	if cmp := BuildComparator(state, assetColumns); cmp != nil {
		t.Fatalf("expected nil comparator for undeclared sort column")
	}
}

func TestBuildComparator_AscendingIsCaseInsensitive(t *testing.T) {
	cmp := BuildComparator(SortState{Column: "name", Direction: SortAscending}, assetColumns)
	if cmp == nil {
		t.Fatalf("expected comparator")
	}

	if cmp(Record{"name": "apple"}, Record{"name": "Banana"}) >= 0 {
		t.Fatalf("expected apple < Banana case-insensitively")
	}
	if cmp(Record{"name": "Apple"}, Record{"name": "apple"}) != 0 {
		t.Fatalf("expected equal keys to compare as equal")
	}
}

func TestBuildComparator_DescendingReversesAscending(t *testing.T) {
	asc := BuildComparator(SortState{Column: "name", Direction: SortAscending}, assetColumns)
	desc := BuildComparator(SortState{Column: "name", Direction: SortDescending}, assetColumns)

	a := Record{"name": "alpha"}
	b := Record{"name": "beta"}

	if asc(a, b) != -desc(a, b) {
		t.Fatalf("expected descending to be the reverse of ascending")
	}
	if desc(a, a) != 0 {
		t.Fatalf("expected ties to stay equal in descending order")
	}
}

func TestSortState_CycleSequence(t *testing.T) {
	state := NoSort()

	state = state.Cycle("name")
	if state.Column != "name" || state.Direction != SortAscending {
		t.Fatalf("first selection should sort ascending, got %+v", state)
	}

	state = state.Cycle("name")
	if state.Direction != SortDescending {
		t.Fatalf("second selection should sort descending, got %+v", state)
	}

	state = state.Cycle("name")
	if state.Active() || state.Column != "" {
		t.Fatalf("third selection should clear the sort, got %+v", state)
	}

	state = state.Cycle("name")
	if state.Direction != SortAscending {
		t.Fatalf("selection after NONE should restart ascending, got %+v", state)
	}
}

func TestSortState_CycleSwitchingColumnResetsToAscending(t *testing.T) {
	state := SortState{Column: "name", Direction: SortDescending}
	state = state.Cycle("type")
	if state.Column != "type" || state.Direction != SortAscending {
		t.Fatalf("selecting a different column should reset to ascending, got %+v", state)
	}
}
