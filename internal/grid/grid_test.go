package grid

import "testing"

func TestToCellFloorsNegatives(t *testing.T) {
	m := Mapper{CellSize: 0.0001}

	if got := m.ToCell(Point{Lat: 0.00015, Lng: 0.00025}); got != (CellID{I: 1, J: 2}) {
		t.Fatalf("positive mapping wrong: %+v", got)
	}
	// Floor, not truncation: -0.00005 belongs to cell -1.
	if got := m.ToCell(Point{Lat: -0.00005, Lng: -0.00015}); got != (CellID{I: -1, J: -2}) {
		t.Fatalf("negative mapping wrong: %+v", got)
	}
	if got := m.ToCell(Point{Lat: 0, Lng: 0}); got != (CellID{I: 0, J: 0}) {
		t.Fatalf("origin should map to (0,0): %+v", got)
	}
}

func TestToPositionIsCellCenter(t *testing.T) {
	m := Mapper{CellSize: 0.0001}
	p := m.ToPosition(CellID{I: -1, J: 0})
	if p.Lat != -0.5*0.0001 || p.Lng != 0.5*0.0001 {
		t.Fatalf("center wrong: %+v", p)
	}
	// Center maps back into the same cell.
	if got := m.ToCell(p); got != (CellID{I: -1, J: 0}) {
		t.Fatalf("center did not round-trip: %+v", got)
	}
}

func TestBounds(t *testing.T) {
	m := Mapper{CellSize: 2}
	low, high := m.Bounds(CellID{I: -1, J: 3})
	if low.Lat != -2 || low.Lng != 6 || high.Lat != 0 || high.Lng != 8 {
		t.Fatalf("bounds wrong: low=%+v high=%+v", low, high)
	}
}

func TestChebyshev(t *testing.T) {
	if d := Chebyshev(CellID{}, CellID{I: 3, J: 3}); d != 3 {
		t.Fatalf("diagonal distance: %d", d)
	}
	if d := Chebyshev(CellID{}, CellID{I: 4, J: 0}); d != 4 {
		t.Fatalf("axis distance: %d", d)
	}
	if d := Chebyshev(CellID{I: -2, J: 5}, CellID{I: 1, J: 4}); d != 3 {
		t.Fatalf("mixed distance: %d", d)
	}
}

func TestRectCells(t *testing.T) {
	r := RectFromCorners(CellID{I: 1, J: -1}, CellID{I: -1, J: 1})
	if r.Min != (CellID{I: -1, J: -1}) || r.Max != (CellID{I: 1, J: 1}) {
		t.Fatalf("normalization wrong: %+v", r)
	}
	cells := r.Cells()
	if len(cells) != 9 || r.Count() != 9 {
		t.Fatalf("expected 9 cells, got %d", len(cells))
	}
	if cells[0] != (CellID{I: -1, J: -1}) || cells[8] != (CellID{I: 1, J: 1}) {
		t.Fatalf("row-major order broken: %+v", cells)
	}
	exp := r.Expand(1)
	if exp.Count() != 25 {
		t.Fatalf("expanded count: %d", exp.Count())
	}
	if !exp.Contains(CellID{I: -2, J: 2}) || exp.Contains(CellID{I: 3, J: 0}) {
		t.Fatalf("expanded containment wrong")
	}
}

func TestCellKeyRoundTrip(t *testing.T) {
	c := CellID{I: -12, J: 40}
	if c.Key() != "-12,40" {
		t.Fatalf("key format: %q", c.Key())
	}
	back, err := ParseKey(c.Key())
	if err != nil || back != c {
		t.Fatalf("round trip failed: %+v %v", back, err)
	}
	if _, err := ParseKey("1;2"); err == nil {
		t.Fatalf("expected parse failure")
	}
	if _, err := ParseKey("a,2"); err == nil {
		t.Fatalf("expected parse failure")
	}
}
