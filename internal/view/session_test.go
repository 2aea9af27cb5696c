package view

import (
	"reflect"
	"testing"
	"time"

	"github.com/datalens/catalogd/internal/tabular"
)

var testColumns = []tabular.Column{
	{Name: "name", Label: "Name"},
	{Name: "type", Label: "Type"},
}

func testRecords() []tabular.Record {
	return []tabular.Record{
		{"name": "C", "type": "table"},
		{"name": "A", "type": "table"},
		{"name": "B", "type": "view"},
	}
}

func recordNames(records []tabular.Record) []string {
	result := make([]string, len(records))
	for i, rec := range records {
		result[i] = rec.StringValue("name")
	}
	return result
}

func TestSession_FilterSearchSortPipeline(t *testing.T) {
	manager := NewManager()
	session := manager.Create(testColumns, testRecords())

	state := session.SetFilter("type", []string{"table"})
	if got := recordNames(state.View.Records); !reflect.DeepEqual(got, []string{"C", "A"}) {
		t.Fatalf("filter pass: got %v", got)
	}

	state = session.CycleSort("name")
	if got := recordNames(state.View.Records); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Fatalf("ascending sort: got %v", got)
	}

	state = session.SetSearch("c")
	if got := recordNames(state.View.Records); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("search pass: got %v", got)
	}

	state = session.ClearFilters()
	if state.View.Active {
		t.Fatalf("expected inactive view after clearing filters and search")
	}
	if len(state.View.Records) != 3 {
		t.Fatalf("expected full record set, got %d", len(state.View.Records))
	}
}

func TestSession_SortCycleRestoresOriginalOrder(t *testing.T) {
	session := NewManager().Create(testColumns, testRecords())

	session.CycleSort("name")
	session.CycleSort("name")
	state := session.CycleSort("name")

	if state.Sort.Active() {
		t.Fatalf("expected sort to be cleared, got %+v", state.Sort)
	}
	if got := recordNames(state.View.Records); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Fatalf("expected original record order, got %v", got)
	}
}

func TestSession_SubscriberPingedOnlyOnMeaningfulChange(t *testing.T) {
	session := NewManager().Create(testColumns, testRecords())
	ch := session.Subscribe()
	defer session.Unsubscribe(ch)

	drain := func() int {
		count := 0
		for {
			select {
			case <-ch:
				count++
			default:
				return count
			}
		}
	}
	drain()

	session.SetFilter("type", []string{"table"})
	if got := drain(); got != 1 {
		t.Fatalf("expected one ping after output changed, got %d", got)
	}

	// Same filter again: identical output, no ping.
	session.SetFilter("type", []string{"table"})
	if got := drain(); got != 0 {
		t.Fatalf("expected no ping for unchanged output, got %d", got)
	}

	// Repeated clears collapse into a single inactive signal.
	session.ClearFilters()
	session.ClearFilters()
	session.ClearFilters()
	if got := drain(); got != 1 {
		t.Fatalf("expected one ping for the inactive transition, got %d", got)
	}
}

func TestSession_FilterableColumnsExcludeBlankOnes(t *testing.T) {
	columns := append([]tabular.Column{}, testColumns...)
	columns = append(columns, tabular.Column{Name: "owner"})
	session := NewManager().Create(columns, testRecords())

	for _, col := range session.FilterableColumns() {
		if col.Name == "owner" {
			t.Fatalf("expected all-blank owner column to be excluded")
		}
	}
}

func TestManager_CreateGetClose(t *testing.T) {
	manager := NewManager()
	session := manager.Create(testColumns, testRecords())

	if _, ok := manager.Get(session.ID()); !ok {
		t.Fatalf("expected session to be retrievable")
	}
	if !manager.Close(session.ID()) {
		t.Fatalf("expected close to succeed")
	}
	if manager.Close(session.ID()) {
		t.Fatalf("expected second close to report unknown session")
	}
	if manager.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", manager.Len())
	}
}

func TestManager_PruneIdle(t *testing.T) {
	manager := NewManager()
	manager.Create(testColumns, testRecords())

	if pruned := manager.PruneIdle(time.Hour); pruned != 0 {
		t.Fatalf("fresh session pruned")
	}
	if pruned := manager.PruneIdle(0); pruned != 1 {
		t.Fatalf("expected idle session to be pruned, got %d", pruned)
	}
}
