// Package view keeps the set of materialized cell handles aligned with the
// currently visible coordinate range.
package view

import (
	"sort"

	"geogrid.app/internal/grid"
)

// CellView is what the presentation layer needs to draw one cell: its
// effective token and whether the player can interact with it.
type CellView struct {
	Cell    grid.CellID
	Value   int
	Present bool
	InRange bool
}

// Result of one reconciliation pass. Removed lists handles that left the
// visible set and must be destroyed; Cells lists every visible cell in
// row-major order, existing handles included (rematerialize, don't skip).
type Result struct {
	Removed []grid.CellID
	Cells   []CellView
}

// EffectiveFunc resolves a cell's effective token (store override or
// generated fallback).
type EffectiveFunc func(grid.CellID) (int, bool)

// Reconciler tracks which cells currently have a presentation handle. The
// margin over-draws the viewport on every side so a single pan does not
// expose a seam before the next pass.
type Reconciler struct {
	margin int
	radius int
	live   map[grid.CellID]struct{}
}

func New(margin, interactRadius int) *Reconciler {
	if margin < 0 {
		margin = 0
	}
	return &Reconciler{
		margin: margin,
		radius: interactRadius,
		live:   map[grid.CellID]struct{}{},
	}
}

// Reconcile computes the margin-expanded visible set for the viewport,
// reports handles that fell out of it, and materializes every cell in it.
// Output is fully determined by (viewport, effective state, player cell):
// the only internal state is the live-handle set, and removal candidates
// are exactly that set, never the whole coordinate space.
func (r *Reconciler) Reconcile(viewport grid.Rect, player grid.CellID, eff EffectiveFunc) Result {
	visible := viewport.Expand(r.margin)

	var res Result
	for c := range r.live {
		if !visible.Contains(c) {
			res.Removed = append(res.Removed, c)
		}
	}
	sort.Slice(res.Removed, func(i, j int) bool {
		a, b := res.Removed[i], res.Removed[j]
		if a.I != b.I {
			return a.I < b.I
		}
		return a.J < b.J
	})
	for _, c := range res.Removed {
		delete(r.live, c)
	}

	res.Cells = make([]CellView, 0, visible.Count())
	for _, c := range visible.Cells() {
		v, ok := eff(c)
		res.Cells = append(res.Cells, CellView{
			Cell:    c,
			Value:   v,
			Present: ok,
			InRange: grid.Chebyshev(c, player) <= r.radius,
		})
		r.live[c] = struct{}{}
	}
	return res
}

// Live returns the materialized set, sorted for stable inspection.
func (r *Reconciler) Live() []grid.CellID {
	out := make([]grid.CellID, 0, len(r.live))
	for c := range r.live {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].I != out[j].I {
			return out[i].I < out[j].I
		}
		return out[i].J < out[j].J
	})
	return out
}

// Reset forgets every handle (session reset; the presentation side drops
// everything too).
func (r *Reconciler) Reset() {
	r.live = map[grid.CellID]struct{}{}
}
