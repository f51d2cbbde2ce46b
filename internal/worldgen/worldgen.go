// Package worldgen decides which cells of the unbounded grid start with a
// token. Generation is a pure function of the cell identity through an
// externally supplied hash, so the same world reappears on every visit and
// across restarts without storing a single generated cell.
package worldgen

import (
	"fmt"

	"geogrid.app/internal/grid"
)

// HashFunc maps a cell key to a stable value in [0,1). Supplied by the
// embedder; must be deterministic across processes for save compatibility.
type HashFunc func(key string) float64

// epochTag is baked into every cell key. Changing it regenerates the whole
// world and invalidates existing saves, so it never changes.
const epochTag = "token"

// CellKey is the exact string handed to the hash for a cell. The
// composition is part of the on-disk compatibility contract.
func CellKey(c grid.CellID) string {
	return fmt.Sprintf("%d,%d,%s", c.I, c.J, epochTag)
}

type Generator struct {
	hash HashFunc
}

func New(hash HashFunc) *Generator {
	return &Generator{hash: hash}
}

// Generate returns the initial token value for a cell, or ok=false for an
// empty cell. Thresholds are checked in descending order of rarity and fall
// through to the lowest non-empty value; most cells (r < 0.96) are empty.
func (g *Generator) Generate(c grid.CellID) (value int, ok bool) {
	r := g.hash(CellKey(c))
	switch {
	case r > 0.997:
		return 16, true
	case r > 0.99:
		return 8, true
	case r > 0.975:
		return 4, true
	case r > 0.96:
		return 2, true
	}
	return 0, false
}
