package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellID identifies a grid cell by its integer indices. Equality is
// structural; the domain is unbounded in both axes.
type CellID struct {
	I int
	J int
}

// Key renders the canonical "i,j" form used by the save schema.
func (c CellID) Key() string {
	return strconv.Itoa(c.I) + "," + strconv.Itoa(c.J)
}

func ParseKey(key string) (CellID, error) {
	a, b, ok := strings.Cut(key, ",")
	if !ok {
		return CellID{}, fmt.Errorf("cell key %q: missing separator", key)
	}
	i, err := strconv.Atoi(a)
	if err != nil {
		return CellID{}, fmt.Errorf("cell key %q: %w", key, err)
	}
	j, err := strconv.Atoi(b)
	if err != nil {
		return CellID{}, fmt.Errorf("cell key %q: %w", key, err)
	}
	return CellID{I: i, J: j}, nil
}

// Point is a continuous position in degrees.
type Point struct {
	Lat float64
	Lng float64
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Chebyshev is the max of per-axis absolute index differences; interaction
// and visibility neighborhoods are squares under this metric.
func Chebyshev(a, b CellID) int {
	di := AbsInt(a.I - b.I)
	dj := AbsInt(a.J - b.J)
	if di > dj {
		return di
	}
	return dj
}

// Mapper converts between continuous positions and cell identities for a
// fixed cell edge length.
type Mapper struct {
	CellSize float64
}

// ToCell floors each coordinate component into an index. Floor, not
// truncation: coordinate 0 is the boundary between cell -1 and cell 0 on
// both axes.
func (m Mapper) ToCell(p Point) CellID {
	return CellID{
		I: int(math.Floor(p.Lat / m.CellSize)),
		J: int(math.Floor(p.Lng / m.CellSize)),
	}
}

// ToPosition returns the cell's center. Many positions map to one cell, so
// this is not an exact inverse of ToCell.
func (m Mapper) ToPosition(c CellID) Point {
	return Point{
		Lat: (float64(c.I) + 0.5) * m.CellSize,
		Lng: (float64(c.J) + 0.5) * m.CellSize,
	}
}

// Bounds returns the cell's low and high corners.
func (m Mapper) Bounds(c CellID) (low, high Point) {
	low = Point{Lat: float64(c.I) * m.CellSize, Lng: float64(c.J) * m.CellSize}
	high = Point{Lat: low.Lat + m.CellSize, Lng: low.Lng + m.CellSize}
	return low, high
}
