package geom

import "testing"

func TestCoordinateRoundTrip(t *testing.T) {
	tests := []uint64{0, 1, 1023, 1 << 20, (1 << 53) - 1}

	for _, u := range tests {
		c := NewCoordinate(u)
		if got := c.Uint64(); got != u {
			t.Errorf("NewCoordinate(%d).Uint64() = %d, want %d", u, got, u)
		}
	}
}

func TestCoordinateNegativeSaturatesToZero(t *testing.T) {
	c := NewCoordinateFromFloat(-5)
	if got := c.Uint64(); got != 0 {
		t.Errorf("Uint64() of negative Coordinate = %d, want 0", got)
	}
}

func TestCoordinateArithmeticCanGoNegative(t *testing.T) {
	center := NewCoordinate(10)
	radius := NewCoordinate(15)

	diff := center.Sub(radius)
	if diff.Float64() != -5 {
		t.Errorf("Sub() float view = %v, want -5", diff.Float64())
	}
	if got := diff.Uint64(); got != 0 {
		t.Errorf("Sub() integer view = %d, want 0 (saturated)", got)
	}
}

func TestCoordinateCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"less", 1, 2, -1},
		{"equal", 5, 5, 0},
		{"greater", 9, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCoordinate(tt.a).Compare(NewCoordinate(tt.b)); got != tt.want {
				t.Errorf("Compare(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCoordinateReducePrecision(t *testing.T) {
	tests := []struct {
		name string
		u    uint64
		k    uint
		want uint64
	}{
		{"shift by 1", 8, 1, 4},
		{"shift by 0", 8, 0, 8},
		{"shift past width saturates", 8, 64, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCoordinate(tt.u).ReducePrecision(tt.k).Uint64(); got != tt.want {
				t.Errorf("ReducePrecision(%d) = %d, want %d", tt.k, got, tt.want)
			}
		})
	}
}
