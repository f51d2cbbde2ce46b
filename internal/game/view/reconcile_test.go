package view

import (
	"reflect"
	"testing"

	"geogrid.app/internal/grid"
)

func emptyWorld(grid.CellID) (int, bool) { return 0, false }

func TestReconcileMaterializesMarginExpandedSet(t *testing.T) {
	r := New(1, 3)
	vp := grid.RectFromCorners(grid.CellID{I: 0, J: 0}, grid.CellID{I: 1, J: 1})

	res := r.Reconcile(vp, grid.CellID{}, emptyWorld)
	if len(res.Removed) != 0 {
		t.Fatalf("nothing was live, nothing to remove: %+v", res.Removed)
	}
	// 2x2 viewport + margin 1 on each side = 4x4.
	if len(res.Cells) != 16 || len(r.Live()) != 16 {
		t.Fatalf("expected 16 materialized cells, got %d/%d", len(res.Cells), len(r.Live()))
	}
	if res.Cells[0].Cell != (grid.CellID{I: -1, J: -1}) {
		t.Fatalf("row-major order broken: %+v", res.Cells[0])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	r := New(1, 3)
	vp := grid.RectFromCorners(grid.CellID{I: -2, J: -2}, grid.CellID{I: 2, J: 2})

	first := r.Reconcile(vp, grid.CellID{}, emptyWorld)
	second := r.Reconcile(vp, grid.CellID{}, emptyWorld)
	if len(second.Removed) != 0 {
		t.Fatalf("unchanged viewport must not remove handles: %+v", second.Removed)
	}
	if !reflect.DeepEqual(first.Cells, second.Cells) {
		t.Fatalf("repeated reconcile differed")
	}
	if len(r.Live()) != len(first.Cells) {
		t.Fatalf("duplicate handles created: %d vs %d", len(r.Live()), len(first.Cells))
	}
}

func TestReconcileRemovesOffscreenHandles(t *testing.T) {
	r := New(0, 3)
	a := grid.RectFromCorners(grid.CellID{I: 0, J: 0}, grid.CellID{I: 1, J: 1})
	b := grid.RectFromCorners(grid.CellID{I: 10, J: 10}, grid.CellID{I: 11, J: 11})

	r.Reconcile(a, grid.CellID{}, emptyWorld)
	res := r.Reconcile(b, grid.CellID{}, emptyWorld)
	if len(res.Removed) != 4 {
		t.Fatalf("all 4 old handles should drop, got %d", len(res.Removed))
	}
	if res.Removed[0] != (grid.CellID{I: 0, J: 0}) {
		t.Fatalf("removed list should be sorted: %+v", res.Removed)
	}
	live := r.Live()
	if len(live) != 4 || live[0] != (grid.CellID{I: 10, J: 10}) {
		t.Fatalf("live set wrong after pan: %+v", live)
	}
}

func TestReconcileOverlappingPanKeepsSharedCells(t *testing.T) {
	r := New(0, 3)
	a := grid.RectFromCorners(grid.CellID{I: 0, J: 0}, grid.CellID{I: 2, J: 2})
	b := grid.RectFromCorners(grid.CellID{I: 1, J: 0}, grid.CellID{I: 3, J: 2})

	r.Reconcile(a, grid.CellID{}, emptyWorld)
	res := r.Reconcile(b, grid.CellID{}, emptyWorld)
	// Only the i=0 column leaves.
	if len(res.Removed) != 3 {
		t.Fatalf("expected 3 removals, got %+v", res.Removed)
	}
	for _, c := range res.Removed {
		if c.I != 0 {
			t.Fatalf("unexpected removal %+v", c)
		}
	}
}

func TestInRangeFlag(t *testing.T) {
	r := New(0, 2)
	vp := grid.RectFromCorners(grid.CellID{I: -3, J: 0}, grid.CellID{I: 3, J: 0})
	res := r.Reconcile(vp, grid.CellID{}, emptyWorld)
	for _, cv := range res.Cells {
		want := grid.AbsInt(cv.Cell.I) <= 2
		if cv.InRange != want {
			t.Fatalf("in-range flag for %+v: got %v", cv.Cell, cv.InRange)
		}
	}
}

func TestReconcileShowsEffectiveState(t *testing.T) {
	world := func(c grid.CellID) (int, bool) {
		if c == (grid.CellID{I: 1, J: 1}) {
			return 4, true
		}
		return 0, false
	}
	r := New(0, 3)
	vp := grid.RectFromCorners(grid.CellID{I: 0, J: 0}, grid.CellID{I: 1, J: 1})
	res := r.Reconcile(vp, grid.CellID{}, world)
	found := false
	for _, cv := range res.Cells {
		if cv.Cell == (grid.CellID{I: 1, J: 1}) {
			found = true
			if !cv.Present || cv.Value != 4 {
				t.Fatalf("effective token not surfaced: %+v", cv)
			}
		} else if cv.Present {
			t.Fatalf("unexpected token at %+v", cv.Cell)
		}
	}
	if !found {
		t.Fatalf("cell (1,1) missing from result")
	}
}
