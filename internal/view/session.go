// Package view owns the server-side state of interactive table views: one
// session per open table, holding the loaded records plus the user's active
// filters, search term and sort toggle, with the tabular engine doing the
// actual work.
package view

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/notify"
	"github.com/datalens/catalogd/internal/tabular"
)

// Session is the owning collaborator of one tabular engine instance. All
// methods are safe for concurrent use; HTTP handlers may race on the same
// session.
type Session struct {
	id       uuid.UUID
	notifier *notify.Notifier

	mu        sync.Mutex
	engine    *tabular.Engine
	records   []tabular.Record
	filters   tabular.FilterSet
	search    string
	sortState tabular.SortState
	last      tabular.View
	touchedAt time.Time
}

// State is a snapshot of a session's inputs and derived output.
type State struct {
	ID      uuid.UUID              `json:"id"`
	Columns []tabular.Column       `json:"columns"`
	Filters []tabular.ActiveFilter `json:"filters,omitempty"`
	Search  string                 `json:"search,omitempty"`
	Sort    tabular.SortState      `json:"sort"`
	View    tabular.View           `json:"view"`
}

func newSession(id uuid.UUID, columns []tabular.Column, records []tabular.Record) *Session {
	s := &Session{
		id:        id,
		notifier:  notify.New(),
		engine:    tabular.NewEngine(columns),
		records:   records,
		sortState: tabular.NoSort(),
		touchedAt: time.Now(),
	}
	s.engine.OnChange(func(tabular.View) {
		s.notifier.Broadcast()
	})
	s.recomputeLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Subscribe returns a channel pinged whenever the filtered output meaningfully
// changes. Callers must Unsubscribe when done.
func (s *Session) Subscribe() chan struct{} {
	return s.notifier.Subscribe()
}

// Unsubscribe releases a listener channel.
func (s *Session) Unsubscribe(ch chan struct{}) {
	s.notifier.Unsubscribe(ch)
}

// SetFilter replaces the value set for one column. An empty set removes the
// filter.
func (s *Session) SetFilter(column string, values []string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Set(column, values)
	return s.recomputeLocked()
}

// ClearFilters removes every active filter and the search term.
func (s *Session) ClearFilters() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Clear()
	s.search = ""
	return s.recomputeLocked()
}

// SetSearch replaces the free-text search term.
func (s *Session) SetSearch(term string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
	return s.recomputeLocked()
}

// CycleSort advances the sort toggle for a column header selection.
func (s *Session) CycleSort(column string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortState = s.sortState.Cycle(column)
	return s.recomputeLocked()
}

// ReplaceRecords swaps the underlying record store, keeping the active
// filters, search term and sort state.
func (s *Session) ReplaceRecords(records []tabular.Record) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	return s.recomputeLocked()
}

// Snapshot returns the current state without recomputing.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	return s.stateLocked()
}

// FilterableColumns lists the declared columns holding at least one non-blank
// value, the set worth offering in a filter menu.
func (s *Session) FilterableColumns() []tabular.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.FilterableColumns(s.records)
}

func (s *Session) recomputeLocked() State {
	s.last = s.engine.Apply(s.records, s.filters.Active(), s.search, s.sortState)
	s.touchedAt = time.Now()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		ID:      s.id,
		Columns: s.engine.Columns(),
		Filters: s.filters.Active(),
		Search:  s.search,
		Sort:    s.sortState,
		View:    s.last,
	}
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.touchedAt)
}
