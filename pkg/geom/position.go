package geom

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Position is a finite ordered sequence of Coordinates of length d >= 1 (the
// dimension). Positions are value types: all arithmetic requires equal
// dimension between operands; violating this is a programming error and is
// reported with a panic.
//
// A tagged-union representation specialized for small, fixed dimensions
// (1..8) plus a generic case would also satisfy this contract; a plain
// slice behaves identically and is the only representation exposed here.
type Position []Coordinate

// NewPosition builds a Position from its Coordinates.
func NewPosition(coords ...Coordinate) Position {
	p := make(Position, len(coords))
	copy(p, coords)
	return p
}

// PositionFromFloats builds a Position from continuous values.
func PositionFromFloats(values ...float64) Position {
	p := make(Position, len(values))
	for i, v := range values {
		p[i] = NewCoordinateFromFloat(v)
	}
	return p
}

// PositionFromInts builds a Position from grid (integer) values.
func PositionFromInts(values ...uint64) Position {
	p := make(Position, len(values))
	for i, v := range values {
		p[i] = NewCoordinate(v)
	}
	return p
}

// Dimensions returns d, the number of Coordinates in the Position.
func (p Position) Dimensions() int { return len(p) }

func requireSameDimensions(op string, a, b Position) {
	if a.Dimensions() != b.Dimensions() {
		panic(fmt.Sprintf("geom: %s requires equal dimension, got %d and %d", op, a.Dimensions(), b.Dimensions()))
	}
}

// Clone returns an independent copy of p.
func (p Position) Clone() Position {
	c := make(Position, len(p))
	copy(c, p)
	return c
}

// Norm returns the Euclidean norm of the float view. For d=1 this is
// simply the absolute value.
func (p Position) Norm() float64 {
	if len(p) == 1 {
		return p[0].Abs().Float64()
	}
	var sumSquares float64
	for _, c := range p {
		f := c.Float64()
		sumSquares += f * f
	}
	return math.Sqrt(sumSquares)
}

// Unit returns self * (1/norm()). If norm() == 0 the result carries NaN
// coordinates rather than silently substituting a fallback vector.
func (p Position) Unit() Position {
	return p.MulScalar(1 / p.Norm())
}

// Dot returns the Euclidean dot product of p and other, which must share
// dimension.
func (p Position) Dot(other Position) float64 {
	requireSameDimensions("dot", p, other)
	var product float64
	for k := range p {
		product += p[k].Float64() * other[k].Float64()
	}
	return product
}

// Add returns the elementwise sum of p and other, which must share dimension.
func (p Position) Add(other Position) Position {
	requireSameDimensions("add", p, other)
	out := make(Position, len(p))
	for k := range p {
		out[k] = p[k].Add(other[k])
	}
	return out
}

// Sub returns the elementwise difference of p and other, which must share dimension.
func (p Position) Sub(other Position) Position {
	requireSameDimensions("sub", p, other)
	out := make(Position, len(p))
	for k := range p {
		out[k] = p[k].Sub(other[k])
	}
	return out
}

// MulScalar returns p scaled elementwise by f.
func (p Position) MulScalar(f float64) Position {
	out := make(Position, len(p))
	for k := range p {
		out[k] = NewCoordinateFromFloat(p[k].Float64() * f)
	}
	return out
}

// Get returns the k-th coordinate. Out-of-range k is a programming error.
func (p Position) Get(k int) Coordinate {
	if k < 0 || k >= len(p) {
		panic(fmt.Sprintf("geom: position index %d out of range [0,%d)", k, len(p)))
	}
	return p[k]
}

// Set replaces the k-th coordinate. Out-of-range k is a programming error.
func (p Position) Set(k int, c Coordinate) {
	if k < 0 || k >= len(p) {
		panic(fmt.Sprintf("geom: position index %d out of range [0,%d)", k, len(p)))
	}
	p[k] = c
}

// ReducePrecision applies Coordinate.ReducePrecision elementwise.
func (p Position) ReducePrecision(k uint) Position {
	out := make(Position, len(p))
	for i, c := range p {
		out[i] = c.ReducePrecision(k)
	}
	return out
}

// Equal compares two Positions elementwise by their integer view.
func (p Position) Equal(other Position) bool {
	if len(p) != len(other) {
		return false
	}
	for k := range p {
		if !p[k].Equal(other[k]) {
			return false
		}
	}
	return true
}

// Hash64 returns a 64-bit FNV-1a hash of the Position's integer view,
// used by the resolution ladder builder to deduplicate coarsened points
// without retaining the full Position as a map key.
func (p Position) Hash64() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, c := range p {
		u := c.Uint64()
		for i := 0; i < 8; i++ {
			buf[i] = byte(u >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// String renders the Position's coordinates (their float view) for debugging.
func (p Position) String() string {
	return fmt.Sprintf("%v", []Coordinate(p))
}
