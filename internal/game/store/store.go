// Package store holds the player-caused deviations from generated world
// state. Only touched cells appear here; an untouched cell has no entry and
// falls back to the generator, so memory is bounded by player activity
// rather than by the area ever explored.
package store

import (
	"sort"

	"geogrid.app/internal/grid"
)

// Memento records a cell's overridden state. Present=false with an entry in
// the store means the player emptied a cell the generator would fill; that
// is distinct from the cell having no entry at all.
type Memento struct {
	Value   int
	Present bool
	Stamp   int64 // unix millis of the write
}

// Entry pairs a cell with its memento for export/import.
type Entry struct {
	Cell    grid.CellID
	Memento Memento
}

// TokenSource is the generated-state fallback consulted when a cell has no
// memento. Satisfied by *worldgen.Generator.
type TokenSource interface {
	Generate(grid.CellID) (int, bool)
}

// Store maps cells to mementoes. Not safe for concurrent use; all access
// happens on the session goroutine.
type Store struct {
	cells    map[grid.CellID]Memento
	now      func() int64
	onChange func()
}

func New(now func() int64) *Store {
	return &Store{
		cells: map[grid.CellID]Memento{},
		now:   now,
	}
}

// OnChange registers the state-changed signal consumed by the persistence
// bridge. Fires after every Set/Delete/Import that alters the map.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Store) Get(c grid.CellID) (Memento, bool) {
	m, ok := s.cells[c]
	return m, ok
}

// Set writes or overwrites a memento with the current timestamp.
func (s *Store) Set(c grid.CellID, value int, present bool) {
	s.cells[c] = Memento{Value: value, Present: present, Stamp: s.now()}
	s.changed()
}

// Delete drops a cell's memento, reverting it to generated state. Used only
// by the evict-offscreen retention policy and by import.
func (s *Store) Delete(c grid.CellID) {
	if _, ok := s.cells[c]; !ok {
		return
	}
	delete(s.cells, c)
	s.changed()
}

func (s *Store) Len() int {
	return len(s.cells)
}

// Effective resolves the token a cell actually shows: the memento when one
// exists (authoritative even when it records absence), the generator
// otherwise.
func (s *Store) Effective(src TokenSource, c grid.CellID) (int, bool) {
	if m, ok := s.cells[c]; ok {
		return m.Value, m.Present
	}
	return src.Generate(c)
}

// Export snapshots every memento, ordered by (I, J) so output is stable.
func (s *Store) Export() []Entry {
	out := make([]Entry, 0, len(s.cells))
	for c, m := range s.cells {
		out = append(out, Entry{Cell: c, Memento: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cell.I != out[j].Cell.I {
			return out[i].Cell.I < out[j].Cell.I
		}
		return out[i].Cell.J < out[j].Cell.J
	})
	return out
}

// Import replaces the entire store with the given entries. No merge: a
// restore is total.
func (s *Store) Import(entries []Entry) {
	s.cells = make(map[grid.CellID]Memento, len(entries))
	for _, e := range entries {
		s.cells[e.Cell] = e.Memento
	}
	s.changed()
}

// Clear empties the store (reset semantics).
func (s *Store) Clear() {
	if len(s.cells) == 0 {
		return
	}
	s.cells = map[grid.CellID]Memento{}
	s.changed()
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
