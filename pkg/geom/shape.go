package geom

import "fmt"

// ShapeKind tags the variant held by a Shape.
type ShapeKind int

const (
	ShapePoint ShapeKind = iota
	ShapeHyperSphere
	ShapeBoundingBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapePoint:
		return "Point"
	case ShapeHyperSphere:
		return "HyperSphere"
	case ShapeBoundingBox:
		return "BoundingBox"
	default:
		return "Unknown"
	}
}

// Shape is a tagged variant over Point, HyperSphere and BoundingBox. Only
// one set of fields is populated depending on Kind.
type Shape struct {
	Kind ShapeKind

	// Point holds the position for ShapePoint.
	Point Position

	// Center and Radius hold the sphere for ShapeHyperSphere.
	Center Position
	Radius Coordinate

	// Lo and Hi hold the corners for ShapeBoundingBox.
	Lo, Hi Position
}

// NewPoint builds a Point shape.
func NewPoint(p Position) Shape {
	return Shape{Kind: ShapePoint, Point: p}
}

// NewHyperSphere builds a HyperSphere shape. radius must be non-negative.
func NewHyperSphere(center Position, radius Coordinate) (Shape, error) {
	if radius.Float64() < 0 {
		return Shape{}, fmt.Errorf("geom: hypersphere radius must be non-negative, got %v", radius.Float64())
	}
	return Shape{Kind: ShapeHyperSphere, Center: center, Radius: radius}, nil
}

// NewBoundingBox builds a BoundingBox shape. lo[k] must be <= hi[k] for all k.
func NewBoundingBox(lo, hi Position) (Shape, error) {
	if lo.Dimensions() != hi.Dimensions() {
		return Shape{}, fmt.Errorf("geom: bounding box corners must share dimension, got %d and %d", lo.Dimensions(), hi.Dimensions())
	}
	for k := 0; k < lo.Dimensions(); k++ {
		if lo[k].Float64() > hi[k].Float64() {
			return Shape{}, fmt.Errorf("geom: bounding box lo[%d]=%v must be <= hi[%d]=%v", k, lo[k].Float64(), k, hi[k].Float64())
		}
	}
	return Shape{Kind: ShapeBoundingBox, Lo: lo, Hi: hi}, nil
}

// Dimensions returns the dimension of the Shape's constituent Positions.
func (s Shape) Dimensions() int {
	switch s.Kind {
	case ShapePoint:
		return s.Point.Dimensions()
	case ShapeHyperSphere:
		return s.Center.Dimensions()
	case ShapeBoundingBox:
		return s.Lo.Dimensions()
	default:
		return 0
	}
}

// GetMBB returns the minimum bounding box of the Shape.
func (s Shape) GetMBB() (Position, Position) {
	switch s.Kind {
	case ShapePoint:
		return s.Point.Clone(), s.Point.Clone()
	case ShapeHyperSphere:
		d := s.Center.Dimensions()
		r := make(Position, d)
		for k := 0; k < d; k++ {
			r[k] = s.Radius
		}
		return s.Center.Sub(r), s.Center.Add(r)
	case ShapeBoundingBox:
		return s.Lo.Clone(), s.Hi.Clone()
	default:
		return nil, nil
	}
}

// Contains reports whether p lies within the Shape, used to apply an
// optional viewport filter to query results. Unlike Rasterise's exclusive
// upper bound, Contains treats BoundingBox bounds as inclusive on both
// ends, since it filters already-materialized results rather than
// enumerating grid cells.
func (s Shape) Contains(p Position) bool {
	switch s.Kind {
	case ShapePoint:
		return s.Point.Equal(p)
	case ShapeHyperSphere:
		return p.Sub(s.Center).Norm() <= s.Radius.Float64()
	case ShapeBoundingBox:
		for k := 0; k < s.Lo.Dimensions(); k++ {
			if p[k].Float64() < s.Lo[k].Float64() || p[k].Float64() > s.Hi[k].Float64() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Rebase transforms every constituent Position of the Shape through
// ChangeBase(from, to). For HyperSphere the radius is transformed by
// mapping the radius vector r*1 through from.AbsolutePosition then
// to.Rebase and taking its first component — a known approximation when
// axis scales differ between the two frames (it does not produce a
// properly transformed ellipsoid). This is a deliberate limitation, not
// an oversight.
func (s Shape) Rebase(from, to *Space) (Shape, error) {
	switch s.Kind {
	case ShapePoint:
		p, err := ChangeBase(s.Point, from, to)
		if err != nil {
			return Shape{}, err
		}
		return NewPoint(p), nil
	case ShapeHyperSphere:
		d := s.Center.Dimensions()
		rv := make(Position, d)
		for k := 0; k < d; k++ {
			rv[k] = s.Radius
		}
		absR, err := from.AbsolutePosition(rv)
		if err != nil {
			return Shape{}, fmt.Errorf("geom: shape rebase: %w", err)
		}
		rebasedR, err := to.Rebase(absR)
		if err != nil {
			return Shape{}, fmt.Errorf("geom: shape rebase: %w", err)
		}
		center, err := ChangeBase(s.Center, from, to)
		if err != nil {
			return Shape{}, err
		}
		return NewHyperSphere(center, rebasedR[0][0])
	case ShapeBoundingBox:
		lo, err := ChangeBase(s.Lo, from, to)
		if err != nil {
			return Shape{}, err
		}
		hi, err := ChangeBase(s.Hi, from, to)
		if err != nil {
			return Shape{}, err
		}
		return NewBoundingBox(lo, hi)
	default:
		return Shape{}, fmt.Errorf("geom: unknown shape kind %v", s.Kind)
	}
}

// Encode lifts space.Encode over every constituent Position; radii pass
// through unchanged.
func (s Shape) Encode(space *Space) (Shape, error) {
	switch s.Kind {
	case ShapePoint:
		f := make([]float64, s.Point.Dimensions())
		for k := range f {
			f[k] = s.Point[k].Float64()
		}
		p, err := space.Encode(f)
		if err != nil {
			return Shape{}, err
		}
		return NewPoint(p), nil
	case ShapeHyperSphere:
		f := make([]float64, s.Center.Dimensions())
		for k := range f {
			f[k] = s.Center[k].Float64()
		}
		c, err := space.Encode(f)
		if err != nil {
			return Shape{}, err
		}
		return NewHyperSphere(c, s.Radius)
	case ShapeBoundingBox:
		lf := make([]float64, s.Lo.Dimensions())
		hf := make([]float64, s.Hi.Dimensions())
		for k := range lf {
			lf[k] = s.Lo[k].Float64()
			hf[k] = s.Hi[k].Float64()
		}
		lo, err := space.Encode(lf)
		if err != nil {
			return Shape{}, err
		}
		hi, err := space.Encode(hf)
		if err != nil {
			return Shape{}, err
		}
		return NewBoundingBox(lo, hi)
	default:
		return Shape{}, fmt.Errorf("geom: unknown shape kind %v", s.Kind)
	}
}

// Decode lifts space.Decode over every constituent Position; radii pass
// through unchanged.
func (s Shape) Decode(space *Space) (Shape, error) {
	switch s.Kind {
	case ShapePoint:
		f, err := space.Decode(s.Point)
		if err != nil {
			return Shape{}, err
		}
		return NewPoint(PositionFromFloats(f...)), nil
	case ShapeHyperSphere:
		f, err := space.Decode(s.Center)
		if err != nil {
			return Shape{}, err
		}
		return NewHyperSphere(PositionFromFloats(f...), s.Radius)
	case ShapeBoundingBox:
		lf, err := space.Decode(s.Lo)
		if err != nil {
			return Shape{}, err
		}
		hf, err := space.Decode(s.Hi)
		if err != nil {
			return Shape{}, err
		}
		return NewBoundingBox(PositionFromFloats(lf...), PositionFromFloats(hf...))
	default:
		return Shape{}, fmt.Errorf("geom: unknown shape kind %v", s.Kind)
	}
}

// rasteriseBox enumerates grid points in [lo, hi) lexicographically, with
// the last dimension fastest and carry into lower dimensions — the upper
// corner is exclusive ("Rasterization bounds").
func rasteriseBox(lo, hi Position) []Position {
	d := lo.Dimensions()
	for k := 0; k < d; k++ {
		if lo[k].Uint64() >= hi[k].Uint64() {
			return nil
		}
	}

	current := make([]uint64, d)
	for k := 0; k < d; k++ {
		current[k] = lo[k].Uint64()
	}

	var results []Position
	for {
		results = append(results, PositionFromInts(current...))

		carried := false
		for k := d - 1; k >= 0; k-- {
			current[k]++
			if current[k] < hi[k].Uint64() {
				carried = true
				break
			}
			current[k] = lo[k].Uint64()
		}
		if !carried {
			break
		}
	}
	return results
}

// Rasterise enumerates the grid points approximating the Shape in the grid
// (integer) view of its coordinates.
func (s Shape) Rasterise() ([]Position, error) {
	switch s.Kind {
	case ShapePoint:
		return []Position{s.Point.Clone()}, nil
	case ShapeBoundingBox:
		return rasteriseBox(s.Lo, s.Hi), nil
	case ShapeHyperSphere:
		lo, hi := s.GetMBB()
		radius := s.Radius.Float64()
		candidates := rasteriseBox(lo, hi)
		positions := make([]Position, 0, len(candidates))
		for _, p := range candidates {
			if p.Sub(s.Center).Norm() <= radius {
				positions = append(positions, p)
			}
		}
		return positions, nil
	default:
		return nil, fmt.Errorf("geom: unknown shape kind %v", s.Kind)
	}
}

// RasteriseFrom rasterises the Shape, then maps each point through
// space.AbsolutePosition. Points for which that mapping fails are silently
// dropped rather than aborting the whole call, since a shape may straddle
// the edge of a frame's validity region.
func (s Shape) RasteriseFrom(space *Space) ([]Position, error) {
	points, err := s.Rasterise()
	if err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(points))
	for _, p := range points {
		abs, err := space.AbsolutePosition(p)
		if err != nil {
			continue
		}
		out = append(out, abs)
	}
	return out, nil
}
