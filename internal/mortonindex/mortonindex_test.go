package mortonindex

import (
	"testing"

	"github.com/spacedb/spacedb/pkg/geom"
)

func objAt(x, y uint64, value uint64) geom.SpaceSetObject {
	return geom.SpaceSetObject{Position: geom.PositionFromInts(x, y), Value: geom.NewCoordinate(value)}
}

func TestNewRejectsOversizedCellBits(t *testing.T) {
	_, err := New("s", nil, 4, 32)
	if err == nil {
		t.Fatal("expected error when dimensions*cellBits exceeds 64")
	}
}

func TestNewDeduplicatesExactTuples(t *testing.T) {
	points := []geom.SpaceSetObject{
		objAt(1, 1, 100),
		objAt(1, 1, 100),
		objAt(1, 1, 200),
	}
	idx, err := New("s", points, 2, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
}

func TestFindExactPosition(t *testing.T) {
	points := []geom.SpaceSetObject{
		objAt(1, 1, 100),
		objAt(2, 2, 200),
	}
	idx, err := New("s", points, 2, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	found := idx.Find(geom.PositionFromInts(1, 1))
	if len(found) != 1 || found[0].Value.Uint64() != 100 {
		t.Errorf("Find() = %v, want one object with value 100", found)
	}

	if len(idx.Find(geom.PositionFromInts(9, 9))) != 0 {
		t.Errorf("Find() on absent position should return nothing")
	}
}

func TestFindByValueScopedToSpace(t *testing.T) {
	points := []geom.SpaceSetObject{objAt(1, 1, 42)}
	idx, err := New("s", points, 2, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := idx.FindByValue(SpaceFields{Space: "other", Offset: 42}); got != nil {
		t.Errorf("FindByValue() with wrong space = %v, want nil", got)
	}
	if got := idx.FindByValue(SpaceFields{Space: "s", Offset: 42}); len(got) != 1 {
		t.Errorf("FindByValue() = %v, want one match", got)
	}
}

func TestFindByShapeBoundingBox(t *testing.T) {
	points := []geom.SpaceSetObject{
		objAt(0, 0, 1),
		objAt(1, 1, 2),
		objAt(5, 5, 3),
	}
	idx, err := New("s", points, 2, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	box, err := geom.NewBoundingBox(geom.PositionFromInts(0, 0), geom.PositionFromInts(2, 2))
	if err != nil {
		t.Fatalf("NewBoundingBox: %v", err)
	}

	found, err := idx.FindByShape(box, nil)
	if err != nil {
		t.Fatalf("FindByShape: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("FindByShape() returned %d objects, want 2", len(found))
	}
}

func TestFindByShapeAppliesViewport(t *testing.T) {
	points := []geom.SpaceSetObject{
		objAt(0, 0, 1),
		objAt(1, 1, 2),
	}
	idx, err := New("s", points, 2, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	box, err := geom.NewBoundingBox(geom.PositionFromInts(0, 0), geom.PositionFromInts(2, 2))
	if err != nil {
		t.Fatalf("NewBoundingBox: %v", err)
	}
	viewport, err := geom.NewBoundingBox(geom.PositionFromInts(0, 0), geom.PositionFromInts(0, 0))
	if err != nil {
		t.Fatalf("NewBoundingBox: %v", err)
	}

	found, err := idx.FindByShape(box, &viewport)
	if err != nil {
		t.Fatalf("FindByShape: %v", err)
	}
	if len(found) != 1 || found[0].Value.Uint64() != 1 {
		t.Errorf("FindByShape() with viewport = %v, want exactly the origin object", found)
	}
}
