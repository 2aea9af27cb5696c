package tabular

import (
	"log"
	"strings"
)

// View is the derived output of one engine pass.
type View struct {
	// Records holds the filtered and sorted rows. Always a fresh slice; the
	// engine never mutates its input.
	Records []Record `json:"records"`
	// Active is false when no filter and no search term were in effect, the
	// distinguished "inactive" state.
	Active bool `json:"active"`
	// Signature summarizes the output for change detection.
	Signature string `json:"signature"`
	// Faults counts records excluded because their evaluation panicked.
	Faults int `json:"faults,omitempty"`
}

// Engine applies property filters, free-text search and column sorting to an
// in-memory record slice. The pipeline order is fixed: filter first, then
// sort, so sorting never affects which records are included.
//
// The engine is a pure function of its inputs apart from the change
// notification gate: a registered callback fires only when the output
// signature differs from the previously emitted one, and the inactive state
// fires exactly once per transition into it.
type Engine struct {
	columns      []Column
	onChange     func(View)
	lastSig      string
	lastInactive bool
	emitted      bool
}

// NewEngine creates an engine over a fixed set of declared columns.
func NewEngine(columns []Column) *Engine {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Engine{columns: cols}
}

// Columns returns the declared columns.
func (e *Engine) Columns() []Column {
	cols := make([]Column, len(e.columns))
	copy(cols, e.columns)
	return cols
}

// OnChange registers the change callback. Only one callback is held; passing
// nil disables notification.
func (e *Engine) OnChange(fn func(View)) {
	e.onChange = fn
}

// Apply runs the filter/sort pipeline and returns the derived view. The
// callback, when registered, is invoked per the signature gate.
func (e *Engine) Apply(records []Record, filters []ActiveFilter, searchTerm string, sortState SortState) View {
	term := strings.TrimSpace(searchTerm)
	active := term != "" || anyActive(filters)

	var out []Record
	faults := 0

	if active {
		pred := BuildPredicate(filters, term, e.columns)
		out = make([]Record, 0, len(records))
		for _, rec := range records {
			pass, ok := evaluate(pred, rec)
			if !ok {
				faults++
				continue
			}
			if pass {
				out = append(out, rec)
			}
		}
	} else {
		out = make([]Record, len(records))
		copy(out, records)
	}

	if cmp := BuildComparator(sortState, e.columns); cmp != nil {
		sortRecords(out, cmp)
	}

	view := View{
		Records:   out,
		Active:    active,
		Signature: Signature(out),
		Faults:    faults,
	}
	e.notify(view)
	return view
}

// FilterableColumns lists the declared columns that hold at least one
// non-blank value across the given records.
func (e *Engine) FilterableColumns(records []Record) []Column {
	return FilterableColumns(records, e.columns)
}

func (e *Engine) notify(view View) {
	defer func() {
		e.lastSig = view.Signature
		e.lastInactive = !view.Active
		e.emitted = true
	}()

	if e.onChange == nil {
		return
	}

	if !view.Active {
		// Inactive fires once per transition, not on every recomputation.
		if !e.emitted || !e.lastInactive {
			e.onChange(view)
		}
		return
	}

	if !e.emitted || e.lastInactive || view.Signature != e.lastSig {
		e.onChange(view)
	}
}

// evaluate guards a single record's predicate evaluation. A panic excludes
// that record and is reported as a fault instead of aborting the whole pass.
func evaluate(pred Predicate, rec Record) (pass bool, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TABULAR] record excluded, predicate evaluation failed: %v", r)
			pass, ok = false, false
		}
	}()
	return pred(rec), true
}

func anyActive(filters []ActiveFilter) bool {
	for _, f := range filters {
		if len(f.Values) > 0 {
			return true
		}
	}
	return false
}
