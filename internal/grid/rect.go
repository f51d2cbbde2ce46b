package grid

// Rect is an inclusive index rectangle, Min.I <= Max.I and Min.J <= Max.J.
type Rect struct {
	Min CellID
	Max CellID
}

// RectFromCorners normalizes two opposite corners into a Rect.
func RectFromCorners(a, b CellID) Rect {
	r := Rect{Min: a, Max: b}
	if r.Min.I > r.Max.I {
		r.Min.I, r.Max.I = r.Max.I, r.Min.I
	}
	if r.Min.J > r.Max.J {
		r.Min.J, r.Max.J = r.Max.J, r.Min.J
	}
	return r
}

// Expand grows the rect by margin cells on every side. Negative margins are
// treated as zero.
func (r Rect) Expand(margin int) Rect {
	if margin <= 0 {
		return r
	}
	return Rect{
		Min: CellID{I: r.Min.I - margin, J: r.Min.J - margin},
		Max: CellID{I: r.Max.I + margin, J: r.Max.J + margin},
	}
}

func (r Rect) Contains(c CellID) bool {
	return c.I >= r.Min.I && c.I <= r.Max.I && c.J >= r.Min.J && c.J <= r.Max.J
}

// Count returns the number of cells the rect covers.
func (r Rect) Count() int {
	return (r.Max.I - r.Min.I + 1) * (r.Max.J - r.Min.J + 1)
}

// Cells enumerates the rect row-major, deterministic for a given rect.
func (r Rect) Cells() []CellID {
	out := make([]CellID, 0, r.Count())
	for i := r.Min.I; i <= r.Max.I; i++ {
		for j := r.Min.J; j <= r.Max.J; j++ {
			out = append(out, CellID{I: i, J: j})
		}
	}
	return out
}
