package geom

import "testing"

func TestShapeRasteriseBoundingBoxIsExclusiveOnUpperBound(t *testing.T) {
	lo := PositionFromInts(0, 0)
	hi := PositionFromInts(2, 2)
	box, err := NewBoundingBox(lo, hi)
	if err != nil {
		t.Fatalf("NewBoundingBox: %v", err)
	}

	points, err := box.Rasterise()
	if err != nil {
		t.Fatalf("Rasterise: %v", err)
	}
	// [0,2) x [0,2) = {0,1} x {0,1} = 4 points
	if len(points) != 4 {
		t.Fatalf("Rasterise() returned %d points, want 4", len(points))
	}
	for _, p := range points {
		if p.Get(0).Uint64() >= 2 || p.Get(1).Uint64() >= 2 {
			t.Errorf("point %v exceeds exclusive upper bound", p)
		}
	}
}

func TestShapeContainsIsInclusiveOnBothEnds(t *testing.T) {
	lo := PositionFromInts(0, 0)
	hi := PositionFromInts(2, 2)
	box, err := NewBoundingBox(lo, hi)
	if err != nil {
		t.Fatalf("NewBoundingBox: %v", err)
	}
	if !box.Contains(PositionFromInts(2, 2)) {
		t.Errorf("Contains() should treat the upper corner as inclusive")
	}
}

func TestShapePointRasterise(t *testing.T) {
	p := NewPoint(PositionFromInts(5, 5))
	points, err := p.Rasterise()
	if err != nil {
		t.Fatalf("Rasterise: %v", err)
	}
	if len(points) != 1 || !points[0].Equal(PositionFromInts(5, 5)) {
		t.Errorf("Rasterise() = %v, want single point [5,5]", points)
	}
}

func TestShapeHyperSphereRasteriseStaysWithinRadius(t *testing.T) {
	center := PositionFromInts(10, 10)
	radius := NewCoordinate(3)
	sphere, err := NewHyperSphere(center, radius)
	if err != nil {
		t.Fatalf("NewHyperSphere: %v", err)
	}

	points, err := sphere.Rasterise()
	if err != nil {
		t.Fatalf("Rasterise: %v", err)
	}
	if len(points) == 0 {
		t.Fatal("expected at least one point inside the sphere")
	}
	for _, p := range points {
		if p.Sub(center).Norm() > 3.0 {
			t.Errorf("point %v lies outside radius 3", p)
		}
	}
}

func TestShapeNewHyperSphereRejectsNegativeRadius(t *testing.T) {
	_, err := NewHyperSphere(PositionFromInts(0, 0), NewCoordinateFromFloat(-1))
	if err == nil {
		t.Fatal("expected error for negative radius")
	}
}

func TestShapeGetMBB(t *testing.T) {
	center := PositionFromInts(10, 10)
	radius := NewCoordinate(3)
	sphere, err := NewHyperSphere(center, radius)
	if err != nil {
		t.Fatalf("NewHyperSphere: %v", err)
	}
	lo, hi := sphere.GetMBB()
	if lo.Get(0).Uint64() != 7 || hi.Get(0).Uint64() != 13 {
		t.Errorf("GetMBB() = [%v, %v], want [7,...], [13,...]", lo, hi)
	}
}
