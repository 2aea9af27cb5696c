package tabular

import (
	"reflect"
	"testing"
)

// panicValue forces a stringification failure inside the predicate: fmt.Sprint
// invokes the Stringer, which panics.
type panicValue struct{}

func (panicValue) String() string { panic("unreadable value") }

func names(records []Record) []string {
	result := make([]string, len(records))
	for i, rec := range records {
		result[i] = rec.StringValue("name")
	}
	return result
}

func TestEngine_FilterExample(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := []Record{
		{"name": "A", "type": "table"},
		{"name": "B", "type": "view"},
	}

	view := engine.Apply(records, []ActiveFilter{{Column: "type", Values: []string{"table"}}}, "", NoSort())

	if got := names(view.Records); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected [A], got %v", got)
	}
	if !view.Active {
		t.Fatalf("expected active view")
	}
}

func TestEngine_SearchExample(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := []Record{
		{"name": "A", "type": "table"},
		{"name": "B", "type": "view"},
	}

	view := engine.Apply(records, nil, "b", NoSort())

	if got := names(view.Records); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("expected [B], got %v", got)
	}
}

func TestEngine_OutputIsSubsetOfInput(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := sampleRecords()

	view := engine.Apply(records, []ActiveFilter{{Column: "type", Values: []string{"table"}}}, "", NoSort())

	index := make(map[string]bool, len(records))
	for _, rec := range records {
		index[rec.StringValue("name")] = true
	}
	for _, rec := range view.Records {
		if !index[rec.StringValue("name")] {
			t.Fatalf("output contains invented record %v", rec)
		}
	}
	if len(view.Records) > len(records) {
		t.Fatalf("output larger than input")
	}
}

func TestEngine_ApplyIsIdempotent(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := sampleRecords()
	filters := []ActiveFilter{{Column: "system", Values: []string{"BigQuery"}}}
	sortState := SortState{Column: "name", Direction: SortDescending}

	first := engine.Apply(records, filters, "", sortState)
	second := engine.Apply(records, filters, "", sortState)

	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Fatalf("expected identical outputs, got %v then %v", names(first.Records), names(second.Records))
	}
	if first.Signature != second.Signature {
		t.Fatalf("expected identical signatures")
	}
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := []Record{
		{"name": "C", "type": "table"},
		{"name": "A", "type": "table"},
		{"name": "B", "type": "view"},
	}
	original := names(records)

	engine.Apply(records, nil, "", SortState{Column: "name", Direction: SortAscending})

	if got := names(records); !reflect.DeepEqual(got, original) {
		t.Fatalf("input order changed from %v to %v", original, got)
	}
}

func TestEngine_SortCycleRestoresOriginalOrder(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := []Record{
		{"name": "C"},
		{"name": "A"},
		{"name": "B"},
	}

	state := NoSort()

	state = state.Cycle("name")
	view := engine.Apply(records, nil, "", state)
	if got := names(view.Records); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("ascending pass: got %v", got)
	}

	state = state.Cycle("name")
	view = engine.Apply(records, nil, "", state)
	if got := names(view.Records); !reflect.DeepEqual(got, []string{"C", "B", "A"}) {
		t.Fatalf("descending pass: got %v", got)
	}

	state = state.Cycle("name")
	view = engine.Apply(records, nil, "", state)
	if got := names(view.Records); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Fatalf("cleared sort should restore input order, got %v", got)
	}
}

func TestEngine_SignatureGateSuppressesDuplicateNotifications(t *testing.T) {
	engine := NewEngine(assetColumns)
	var emissions []View
	engine.OnChange(func(v View) { emissions = append(emissions, v) })

	records := sampleRecords()
	filters := []ActiveFilter{{Column: "type", Values: []string{"table"}}}

	engine.Apply(records, filters, "", NoSort())
	engine.Apply(records, filters, "", NoSort())
	engine.Apply(records, filters, "", NoSort())

	if len(emissions) != 1 {
		t.Fatalf("expected a single notification for unchanged output, got %d", len(emissions))
	}

	// Narrowing the filter changes the output and must notify again.
	engine.Apply(records, []ActiveFilter{{Column: "name", Values: []string{"B"}}}, "", NoSort())
	if len(emissions) != 2 {
		t.Fatalf("expected a second notification after the output changed, got %d", len(emissions))
	}
}

func TestEngine_InactiveSignalFiresOncePerTransition(t *testing.T) {
	engine := NewEngine(assetColumns)
	var inactive, active int
	engine.OnChange(func(v View) {
		if v.Active {
			active++
		} else {
			inactive++
		}
	})

	records := sampleRecords()

	// Rapid repeated clears collapse into one inactive signal.
	engine.Apply(records, nil, "", NoSort())
	engine.Apply(records, nil, "", NoSort())
	engine.Apply(records, nil, "", NoSort())
	if inactive != 1 {
		t.Fatalf("expected one inactive signal, got %d", inactive)
	}

	engine.Apply(records, nil, "table", NoSort())
	if active != 1 {
		t.Fatalf("expected one active notification, got %d", active)
	}

	engine.Apply(records, nil, "", NoSort())
	engine.Apply(records, nil, "", NoSort())
	if inactive != 2 {
		t.Fatalf("expected a second inactive signal after re-entering the state, got %d", inactive)
	}
}

func TestEngine_FaultyRecordIsExcludedNotFatal(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := []Record{
		{"name": "A", "type": "table"},
		{"name": panicValue{}, "type": "view"},
		{"name": "C", "type": "view"},
	}

	view := engine.Apply(records, nil, "a", NoSort())

	if view.Faults != 1 {
		t.Fatalf("expected one fault, got %d", view.Faults)
	}
	for _, rec := range view.Records {
		if _, bad := rec["name"].(panicValue); bad {
			t.Fatalf("faulty record leaked into the output")
		}
	}
	if got := names(view.Records); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected remaining records to be processed, got %v", got)
	}
}

func TestEngine_FilterableColumnsSkipsBlankColumns(t *testing.T) {
	engine := NewEngine(assetColumns)
	records := []Record{
		{"name": "A", "type": "table", "system": nil},
		{"name": "B", "type": "view", "system": "  "},
	}

	cols := engine.FilterableColumns(records)

	for _, col := range cols {
		if col.Name == "system" {
			t.Fatalf("expected all-blank system column to be excluded")
		}
	}
	if len(cols) != 2 {
		t.Fatalf("expected name and type to remain, got %v", cols)
	}
}
