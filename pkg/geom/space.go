package geom

import "fmt"

// Space is a named affine coordinate frame: an origin and a diagonal basis
// (per-axis scale factor) placing this frame inside the universal frame,
// plus a hyperrectangular extent expressed in the frame's own continuous
// units and a grid resolution (bits per axis) used to encode/decode between
// continuous and grid coordinates.
//
// The basis is restricted to axis-aligned scaling (no rotation/shear): each
// universal axis k maps to local axis k via `universal[k] = origin[k] +
// local[k]*scale[k]`. This is a deliberate specialization of "affine
// basis" rather than a generalization of it — full bases would need
// linear-system inversion in Rebase, which nothing here exercises.
type Space struct {
	name       string
	dimensions int
	origin     []float64
	scale      []float64
	lo, hi     []float64
	gridBits   uint
}

// NewSpace constructs a Space. origin, scale, lo and hi must each have
// length dimensions; scale entries must be non-zero and lo[k] <= hi[k].
func NewSpace(name string, dimensions int, origin, scale, lo, hi []float64, gridBits uint) (*Space, error) {
	if len(origin) != dimensions || len(scale) != dimensions || len(lo) != dimensions || len(hi) != dimensions {
		return nil, fmt.Errorf("geom: space %q: origin/scale/lo/hi must all have length %d", name, dimensions)
	}
	for k := 0; k < dimensions; k++ {
		if scale[k] == 0 {
			return nil, fmt.Errorf("geom: space %q: scale[%d] must be non-zero", name, k)
		}
		if lo[k] > hi[k] {
			return nil, fmt.Errorf("geom: space %q: lo[%d]=%v must be <= hi[%d]=%v", name, k, lo[k], k, hi[k])
		}
	}
	return &Space{
		name:       name,
		dimensions: dimensions,
		origin:     append([]float64(nil), origin...),
		scale:      append([]float64(nil), scale...),
		lo:         append([]float64(nil), lo...),
		hi:         append([]float64(nil), hi...),
		gridBits:   gridBits,
	}, nil
}

func (s *Space) Name() string     { return s.name }
func (s *Space) Dimensions() int  { return s.dimensions }
func (s *Space) GridBits() uint   { return s.gridBits }
func (s *Space) gridMax() float64 { return float64((uint64(1) << s.gridBits) - 1) }

// Origin returns a copy of the frame's origin in the universal frame.
func (s *Space) Origin() []float64 { return append([]float64(nil), s.origin...) }

// Scale returns a copy of the frame's per-axis scale factors.
func (s *Space) Scale() []float64 { return append([]float64(nil), s.scale...) }

// Lo returns a copy of the frame's lower extent, in its own continuous units.
func (s *Space) Lo() []float64 { return append([]float64(nil), s.lo...) }

// Hi returns a copy of the frame's upper extent, in its own continuous units.
func (s *Space) Hi() []float64 { return append([]float64(nil), s.hi...) }

// Encode maps continuous coordinates, expressed in this frame's own units,
// to a grid Position.
func (s *Space) Encode(values []float64) (Position, error) {
	if len(values) != s.dimensions {
		return nil, fmt.Errorf("geom: space %q: encode expects %d values, got %d", s.name, s.dimensions, len(values))
	}
	gridMax := s.gridMax()
	out := make(Position, s.dimensions)
	for k := 0; k < s.dimensions; k++ {
		span := s.hi[k] - s.lo[k]
		var t float64
		if span != 0 {
			t = (values[k] - s.lo[k]) / span
		}
		out[k] = NewCoordinateFromFloat(t * gridMax)
	}
	return out, nil
}

// Decode maps a grid Position back to continuous coordinates in this
// frame's own units.
func (s *Space) Decode(p Position) ([]float64, error) {
	if p.Dimensions() != s.dimensions {
		return nil, fmt.Errorf("geom: space %q: decode expects dimension %d, got %d", s.name, s.dimensions, p.Dimensions())
	}
	gridMax := s.gridMax()
	out := make([]float64, s.dimensions)
	for k := 0; k < s.dimensions; k++ {
		span := s.hi[k] - s.lo[k]
		t := p[k].Float64() / gridMax
		out[k] = s.lo[k] + t*span
	}
	return out, nil
}

// AbsolutePosition maps a grid Position, local to this frame, to the
// universal frame.
func (s *Space) AbsolutePosition(p Position) (Position, error) {
	local, err := s.Decode(p)
	if err != nil {
		return nil, fmt.Errorf("geom: space %q: absolute_position: %w", s.name, err)
	}
	out := make(Position, s.dimensions)
	for k := 0; k < s.dimensions; k++ {
		out[k] = NewCoordinateFromFloat(s.origin[k] + local[k]*s.scale[k])
	}
	return out, nil
}

// Rebase expresses a universal-frame Position in this frame's grid. The
// axis-aligned basis restriction means this frame's inverse is always
// well-defined and single-valued; the slice return leaves room for a
// future basis with an ambiguous inverse, which this implementation
// never constructs.
func (s *Space) Rebase(universal Position) ([]Position, error) {
	if universal.Dimensions() != s.dimensions {
		return nil, fmt.Errorf("geom: space %q: rebase expects dimension %d, got %d", s.name, s.dimensions, universal.Dimensions())
	}
	local := make([]float64, s.dimensions)
	for k := 0; k < s.dimensions; k++ {
		local[k] = (universal[k].Float64() - s.origin[k]) / s.scale[k]
	}
	grid, err := s.Encode(local)
	if err != nil {
		return nil, fmt.Errorf("geom: space %q: rebase: %w", s.name, err)
	}
	return []Position{grid}, nil
}

// ChangeBase composes AbsolutePosition and Rebase: it re-expresses a
// Position local to `from` in terms of `to`'s grid:
// `to.rebase(from.absolute_position(p))[0]`.
func ChangeBase(p Position, from, to *Space) (Position, error) {
	if p.Dimensions() != from.Dimensions() {
		return nil, fmt.Errorf("geom: change_base: position dimension %d does not match space %q dimension %d",
			p.Dimensions(), from.name, from.dimensions)
	}
	universal, err := from.AbsolutePosition(p)
	if err != nil {
		return nil, fmt.Errorf("geom: change_base: %w", err)
	}
	rebased, err := to.Rebase(universal)
	if err != nil {
		return nil, fmt.Errorf("geom: change_base: %w", err)
	}
	return rebased[0], nil
}

// Volume returns the total hyperrectangular volume of the frame's extent,
// expressed in universal units.
func (s *Space) Volume() float64 {
	v := 1.0
	for k := 0; k < s.dimensions; k++ {
		v *= s.scale[k] * (s.hi[k] - s.lo[k])
	}
	if v < 0 {
		v = -v
	}
	return v
}
