// Package filters holds the user's filter selection and title search text.
//
// The Store is the single source of truth read by the results pipeline.
// Every mutation that changes state dispatches an Event to subscribers
// synchronously, after the store lock has been released, so subscribers
// may read the store from inside their callback.
package filters

import (
	"sync"

	"github.com/fyrsmithlabs/showcase/internal/project"
)

// EventType identifies which part of the filter state changed.
type EventType int

const (
	// EventSelectedFiltersUpdated fires when the filter selection changes.
	EventSelectedFiltersUpdated EventType = iota

	// EventTitleSubstringUpdated fires when the title search text changes.
	EventTitleSubstringUpdated
)

func (t EventType) String() string {
	switch t {
	case EventSelectedFiltersUpdated:
		return "selected_filters"
	case EventTitleSubstringUpdated:
		return "title_substring"
	default:
		return "unknown"
	}
}

// Event describes a state change.
type Event struct {
	Type EventType
}

// Store holds the selected filters and the title substring.
type Store struct {
	mu       sync.RWMutex
	selected project.FilterSet
	title    string

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		selected: project.NewFilterSet(),
		subs:     make(map[int]func(Event)),
	}
}

// SelectedFilters returns a copy of the current selection.
func (s *Store) SelectedFilters() project.FilterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected.Clone()
}

// TitleSubstring returns the current title search text.
func (s *Store) TitleSubstring() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// SetSelectedFilters replaces the whole selection.
func (s *Store) SetSelectedFilters(filters project.FilterSet) {
	s.updateFilters(func(project.FilterSet) project.FilterSet {
		return filters.Clone()
	})
}

// AddFilter selects f.
func (s *Store) AddFilter(f project.Filter) {
	s.updateFilters(func(cur project.FilterSet) project.FilterSet {
		next := cur.Clone()
		next[f] = struct{}{}
		return next
	})
}

// RemoveFilter deselects f.
func (s *Store) RemoveFilter(f project.Filter) {
	s.updateFilters(func(cur project.FilterSet) project.FilterSet {
		next := cur.Clone()
		delete(next, f)
		return next
	})
}

// ToggleFilter flips the selection of f and reports whether it is now selected.
func (s *Store) ToggleFilter(f project.Filter) bool {
	var selected bool
	s.updateFilters(func(cur project.FilterSet) project.FilterSet {
		next := cur.Clone()
		if next.Has(f) {
			delete(next, f)
		} else {
			next[f] = struct{}{}
			selected = true
		}
		return next
	})
	return selected
}

// ClearFilters deselects everything.
func (s *Store) ClearFilters() {
	s.updateFilters(func(project.FilterSet) project.FilterSet {
		return project.NewFilterSet()
	})
}

// SetTitleSubstring updates the title search text.
func (s *Store) SetTitleSubstring(title string) {
	s.mu.Lock()
	if s.title == title {
		s.mu.Unlock()
		return
	}
	s.title = title
	s.mu.Unlock()

	s.dispatch(Event{Type: EventTitleSubstringUpdated})
}

// Subscribe registers fn for every dispatched event.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) updateFilters(update func(project.FilterSet) project.FilterSet) {
	s.mu.Lock()
	next := update(s.selected)
	if next.Equal(s.selected) {
		s.mu.Unlock()
		return
	}
	s.selected = next
	s.mu.Unlock()

	s.dispatch(Event{Type: EventSelectedFiltersUpdated})
}

func (s *Store) dispatch(e Event) {
	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}
