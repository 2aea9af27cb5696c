package tabular

import "testing"

var assetColumns = []Column{
	{Name: "name", Label: "Name"},
	{Name: "type", Label: "Type"},
	{Name: "system", Label: "System"},
}

func sampleRecords() []Record {
	return []Record{
		{"name": "A", "type": "table", "system": "BigQuery"},
		{"name": "B", "type": "view", "system": "Postgres"},
		{"name": "C", "type": "table", "system": "BigQuery"},
	}
}

func TestBuildPredicate_NoFiltersAcceptsEverything(t *testing.T) {
	pred := BuildPredicate(nil, "", assetColumns)
	for _, rec := range sampleRecords() {
		if !pred(rec) {
			t.Fatalf("expected identity predicate to accept %v", rec)
		}
	}
}

func TestBuildPredicate_SingleColumnFilter(t *testing.T) {
	pred := BuildPredicate([]ActiveFilter{{Column: "type", Values: []string{"table"}}}, "", assetColumns)

	records := sampleRecords()
	if !pred(records[0]) {
		t.Fatalf("expected table record to pass")
	}
	if pred(records[1]) {
		t.Fatalf("expected view record to be excluded")
	}
}

func TestBuildPredicate_ANDAcrossColumnsORWithinValues(t *testing.T) {
	filters := []ActiveFilter{
		{Column: "name", Values: []string{"A", "B"}},
		{Column: "type", Values: []string{"table"}},
	}
	pred := BuildPredicate(filters, "", assetColumns)

	cases := []struct {
		rec  Record
		want bool
	}{
		{Record{"name": "A", "type": "table"}, true},
		{Record{"name": "B", "type": "table"}, true},
		{Record{"name": "B", "type": "view"}, false},
		{Record{"name": "C", "type": "table"}, false},
	}
	for _, tc := range cases {
		if got := pred(tc.rec); got != tc.want {
			t.Fatalf("record %v: expected %v, got %v", tc.rec, tc.want, got)
		}
	}
}

func TestBuildPredicate_SearchIsCaseInsensitive(t *testing.T) {
	pred := BuildPredicate(nil, "BIGQUERY", assetColumns)

	if !pred(Record{"name": "A", "system": "BigQuery"}) {
		t.Fatalf("expected case-insensitive match on BigQuery")
	}
	if pred(Record{"name": "B", "system": "Postgres"}) {
		t.Fatalf("expected non-matching record to be excluded")
	}
}

func TestBuildPredicate_SearchScansAllDeclaredColumns(t *testing.T) {
	pred := BuildPredicate(nil, "b", assetColumns)

	records := sampleRecords()
	if pred(records[0]) != true {
		// "BigQuery" contains "b" case-insensitively.
		t.Fatalf("expected record A to match via system column")
	}
	if !pred(records[1]) {
		t.Fatalf("expected record B to match via name column")
	}
}

func TestBuildPredicate_FilterCombinesWithSearch(t *testing.T) {
	filters := []ActiveFilter{{Column: "type", Values: []string{"table"}}}
	pred := BuildPredicate(filters, "postgres", assetColumns)

	for _, rec := range sampleRecords() {
		if pred(rec) {
			t.Fatalf("no table record mentions postgres, but %v passed", rec)
		}
	}
}

func TestBuildPredicate_UndeclaredFilterColumnNeverMatches(t *testing.T) {
	pred := BuildPredicate([]ActiveFilter{{Column: "owner", Values: []string{"x"}}}, "", assetColumns)

	for _, rec := range sampleRecords() {
		if pred(rec) {
			t.Fatalf("filter on undeclared column should exclude %v", rec)
		}
	}
}

func TestBuildPredicate_MissingValueComparesAsEmptyString(t *testing.T) {
	pred := BuildPredicate([]ActiveFilter{{Column: "system", Values: []string{""}}}, "", assetColumns)

	if !pred(Record{"name": "A", "type": "table"}) {
		t.Fatalf("expected missing column value to match the empty string")
	}
	if pred(Record{"name": "A", "type": "table", "system": "BigQuery"}) {
		t.Fatalf("expected populated column value not to match the empty string")
	}
}

func TestBuildPredicate_WhitespaceTermIsIgnored(t *testing.T) {
	pred := BuildPredicate(nil, "   ", assetColumns)
	if !pred(Record{"name": "A"}) {
		t.Fatalf("expected whitespace-only search term to be treated as absent")
	}
}
