// Package session owns a single play session: the player, the one-slot
// inventory, the override store, and the reconciler. Everything here runs
// on one logical goroutine; external inputs arrive as ordered events
// through the Loop and are processed to completion, so no state needs a
// lock.
package session

import (
	"log"
	"time"

	"geogrid.app/internal/game/store"
	"geogrid.app/internal/game/view"
	"geogrid.app/internal/grid"
	"geogrid.app/internal/persistence/save"
	"geogrid.app/internal/worldgen"
)

type Config struct {
	Mapper         grid.Mapper
	Generator      *worldgen.Generator
	InteractRadius int
	ViewMargin     int
	VictoryTarget  int

	// EvictOffscreen enables the farming variant: overrides for cells that
	// leave the reconciled set are dropped and the cells regrow from the
	// generator. Off by default; the persistent-memento design is
	// authoritative.
	EvictOffscreen bool

	Spawn  grid.Point
	Now    func() int64 // unix millis; defaults to time.Now
	Logger *log.Logger
}

type Session struct {
	cfg   Config
	store *store.Store
	recon *view.Reconciler

	pos      grid.Point
	invValue int
	invHeld  bool

	victoryFired bool

	onChange  func()
	onVictory func(value int)
}

func New(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UnixMilli() }
	}
	s := &Session{
		cfg:   cfg,
		recon: view.New(cfg.ViewMargin, cfg.InteractRadius),
		pos:   cfg.Spawn,
	}
	s.store = store.New(cfg.Now)
	s.store.OnChange(s.changed)
	return s
}

// OnChange registers the state-changed signal (any mutation of position,
// inventory, or override store). The persistence bridge hangs off this.
func (s *Session) OnChange(fn func()) { s.onChange = fn }

// OnVictory registers the victory signal. Fires at most once per session
// lifetime, when a crafted value first reaches the target.
func (s *Session) OnVictory(fn func(value int)) { s.onVictory = fn }

func (s *Session) Position() grid.Point { return s.pos }

// PlayerCell is always derived from the continuous position, never stored,
// so the two cannot desync.
func (s *Session) PlayerCell() grid.CellID { return s.cfg.Mapper.ToCell(s.pos) }

func (s *Session) Inventory() (value int, held bool) { return s.invValue, s.invHeld }

func (s *Session) Store() *store.Store { return s.store }

// Effective resolves a cell's effective token: override if present,
// generated otherwise.
func (s *Session) Effective(c grid.CellID) (int, bool) {
	return s.store.Effective(s.cfg.Generator, c)
}

// OnPositionChanged is the single movement entry point; every movement
// source (buttons, keyboard, geolocation) funnels through it.
func (s *Session) OnPositionChanged(lat, lng float64) {
	s.pos = grid.Point{Lat: lat, Lng: lng}
	s.changed()
}

// Reconcile aligns the materialized cell set with the viewport. Under the
// evict-offscreen policy it also drops overrides for cells that left the
// set; under the default policy mementoes survive going off screen.
func (s *Session) Reconcile(viewport grid.Rect) view.Result {
	res := s.recon.Reconcile(viewport, s.PlayerCell(), s.Effective)
	if s.cfg.EvictOffscreen {
		for _, c := range res.Removed {
			s.store.Delete(c)
		}
	}
	return res
}

// Reset returns the session to a fresh spawn: empty store, empty
// inventory, default position. The caller clears the persisted record.
func (s *Session) Reset() {
	s.pos = s.cfg.Spawn
	s.invValue, s.invHeld = 0, false
	s.victoryFired = false
	s.store.Clear()
	s.recon.Reset()
	s.changed()
}

// Snapshot builds the persisted record for the current state.
func (s *Session) Snapshot() save.Record {
	rec := save.Record{
		PlayerPosition: save.Position{Lat: s.pos.Lat, Lng: s.pos.Lng},
		ModifiedCells:  save.CellEntries(s.store.Export()),
		Timestamp:      s.cfg.Now(),
	}
	if s.invHeld {
		rec.Inventory = &save.TokenV1{Value: s.invValue}
	}
	return rec
}

// Restore replaces the session state from a decoded record. The caller has
// already validated the record shape; a bad cell key still fails the whole
// restore (never a partial load).
func (s *Session) Restore(rec save.Record) error {
	entries, err := save.StoreEntries(rec.ModifiedCells)
	if err != nil {
		return err
	}
	s.pos = grid.Point{Lat: rec.PlayerPosition.Lat, Lng: rec.PlayerPosition.Lng}
	s.invValue, s.invHeld = 0, false
	if rec.Inventory != nil {
		s.invValue, s.invHeld = rec.Inventory.Value, true
	}
	s.store.Import(entries)
	// The victory flag is not persisted; a save that already contains a
	// target-sized token has fired it in a previous run.
	s.victoryFired = false
	for _, e := range entries {
		if e.Memento.Present && e.Memento.Value >= s.cfg.VictoryTarget {
			s.victoryFired = true
			break
		}
	}
	s.recon.Reset()
	return nil
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
