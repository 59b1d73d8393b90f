// Package geom provides the N-dimensional position algebra, coordinate
// frames, and shape primitives the spatial index is built on.
package geom

import "strconv"

// Coordinate is a dimensionless scalar with two interchangeable views: an
// unsigned grid (integer) view and a continuous (float) view. The integer
// view is canonical for ordering and equality; the float view is what
// arithmetic operates on so that intermediate results (e.g. a hypersphere
// center minus its radius) can go negative before being clamped back into
// the grid's non-negative range.
//
// For values in [0, 2^53) the conversion int -> float -> int round-trips
// exactly, since float64 represents integers in that range without loss.
type Coordinate struct {
	v float64
}

// NewCoordinate builds a Coordinate from its grid (integer) view.
func NewCoordinate(u uint64) Coordinate {
	return Coordinate{v: float64(u)}
}

// NewCoordinateFromFloat builds a Coordinate from its continuous (float) view.
func NewCoordinateFromFloat(f float64) Coordinate {
	return Coordinate{v: f}
}

// Uint64 returns the grid (integer) view, saturating to 0 for negative values.
func (c Coordinate) Uint64() uint64 {
	if c.v <= 0 {
		return 0
	}
	return uint64(c.v)
}

// Float64 returns the continuous (float) view.
func (c Coordinate) Float64() float64 {
	return c.v
}

// Abs returns the absolute value, in the float view.
func (c Coordinate) Abs() Coordinate {
	if c.v < 0 {
		return Coordinate{v: -c.v}
	}
	return c
}

func (c Coordinate) Add(o Coordinate) Coordinate { return Coordinate{v: c.v + o.v} }
func (c Coordinate) Sub(o Coordinate) Coordinate { return Coordinate{v: c.v - o.v} }
func (c Coordinate) Mul(o Coordinate) Coordinate { return Coordinate{v: c.v * o.v} }
func (c Coordinate) Div(o Coordinate) Coordinate { return Coordinate{v: c.v / o.v} }

// Less orders two Coordinates by their integer view.
func (c Coordinate) Less(o Coordinate) bool { return c.Uint64() < o.Uint64() }

// Equal compares two Coordinates by their integer view.
func (c Coordinate) Equal(o Coordinate) bool { return c.Uint64() == o.Uint64() }

// Compare returns -1, 0 or 1 comparing the integer views of c and o.
func (c Coordinate) Compare(o Coordinate) int {
	cu, ou := c.Uint64(), o.Uint64()
	switch {
	case cu < ou:
		return -1
	case cu > ou:
		return 1
	default:
		return 0
	}
}

// MarshalJSON renders the continuous (float) view, since Coordinate's
// storage field is unexported and CLI/debug output needs a human-readable
// number rather than an empty object.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(c.v, 'g', -1, 64)), nil
}

// UnmarshalJSON parses a JSON number into the continuous (float) view.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	c.v = f
	return nil
}

// ReducePrecision returns a Coordinate whose integer view is self >> k,
// saturating to 0. This is the only mutation primitive the index relies on
// to coarsen positions when building the resolution ladder.
func (c Coordinate) ReducePrecision(k uint) Coordinate {
	u := c.Uint64()
	if k >= 64 {
		return NewCoordinate(0)
	}
	return NewCoordinate(u >> k)
}
