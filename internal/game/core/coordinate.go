package core

import (
	"fmt"

	"github.com/mitchelldurbincs/hexwar/internal/common"
)

// Coordinate is an axial hex address (q, r)
type Coordinate struct {
	Q, R int
}

// NewCoordinate creates a new coordinate with the given q and r values
func NewCoordinate(q, r int) Coordinate {
	return Coordinate{Q: q, R: r}
}

// Direction indexes the six axial neighbor offsets
type Direction int

const (
	East Direction = iota
	NorthEast
	NorthWest
	West
	SouthWest
	SouthEast
)

// DirectionVectors lists neighbor offsets in enumeration order.
// BFS expands neighbors in this order, so it decides which of several
// equal-length paths is returned.
var DirectionVectors = [6]Coordinate{
	East:      {Q: 1, R: 0},
	NorthEast: {Q: 1, R: -1},
	NorthWest: {Q: 0, R: -1},
	West:      {Q: -1, R: 0},
	SouthWest: {Q: -1, R: 1},
	SouthEast: {Q: 0, R: 1},
}

// S returns the implicit third cube coordinate
func (c Coordinate) S() int {
	return -c.Q - c.R
}

// Distance returns the number of hex steps between a and b
func Distance(a, b Coordinate) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return common.Max3(common.Abs(dq), common.Abs(dr), common.Abs(dq+dr))
}

// DistanceTo returns the number of hex steps to other
func (c Coordinate) DistanceTo(other Coordinate) int {
	return Distance(c, other)
}

// IsAdjacentTo checks if other is one of the six neighbors of c
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return Distance(c, other) == 1
}

// Neighbors returns the six adjacent coordinates in DirectionVectors order
func (c Coordinate) Neighbors() [6]Coordinate {
	var out [6]Coordinate
	for i, d := range DirectionVectors {
		out[i] = c.Add(d)
	}
	return out
}

// Move returns the neighbor of c in the given direction
func (c Coordinate) Move(d Direction) Coordinate {
	if d < East || d > SouthEast {
		return c
	}
	return c.Add(DirectionVectors[d])
}

// DirectionTo returns the direction from c to an adjacent coordinate,
// or -1 if the coordinates are not adjacent
func (c Coordinate) DirectionTo(other Coordinate) Direction {
	delta := other.Sub(c)
	for i, d := range DirectionVectors {
		if d == delta {
			return Direction(i)
		}
	}
	return -1
}

// Add returns the component-wise sum
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{Q: c.Q + other.Q, R: c.R + other.R}
}

// Sub returns the component-wise difference
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{Q: c.Q - other.Q, R: c.R - other.R}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Q, c.R)
}

// HexRegion enumerates the hexagonal region of the given extent in
// creation order: q ascending, then r ascending.
func HexRegion(qRadius, rRadius int) []Coordinate {
	if qRadius < 0 || rRadius < 0 {
		return nil
	}
	coords := make([]Coordinate, 0, (2*qRadius+1)*(2*rRadius+1))
	for q := -qRadius; q <= qRadius; q++ {
		lo := common.Max(-rRadius, -q-rRadius)
		hi := common.Min(rRadius, -q+rRadius)
		for r := lo; r <= hi; r++ {
			coords = append(coords, Coordinate{Q: q, R: r})
		}
	}
	return coords
}

// RegionBounds returns the smallest (qRadius, rRadius) whose HexRegion
// contains every coordinate given.
func RegionBounds(coords []Coordinate) (qRadius, rRadius int) {
	for _, c := range coords {
		qRadius = common.Max(qRadius, common.Abs(c.Q))
		rRadius = common.Max3(rRadius, common.Abs(c.R), common.Abs(c.Q+c.R))
	}
	return qRadius, rRadius
}
