package spacedb

import (
	"testing"

	"github.com/spacedb/spacedb/pkg/geom"
)

func testSpace(t *testing.T) *geom.Space {
	t.Helper()
	s, err := geom.NewSpace("std", 2, []float64{0, 0}, []float64{1, 1}, []float64{0, 0}, []float64{1, 1}, 10)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	return s
}

func gridObjects(n int) []geom.SpaceSetObject {
	var objs []geom.SpaceSetObject
	count := uint64(0)
	for x := uint64(0); x < uint64(n); x++ {
		for y := uint64(0); y < uint64(n); y++ {
			objs = append(objs, geom.SpaceSetObject{
				Position: geom.PositionFromInts(x*4, y*4),
				Value:    geom.NewCoordinate(count),
			})
			count++
		}
	}
	return objs
}

func TestNewBuildsNonEmptyLadder(t *testing.T) {
	space := testSpace(t)
	objs := gridObjects(8)

	db, err := New(space, objs, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(db.Resolutions()) == 0 {
		t.Fatal("expected a non-empty resolution ladder")
	}
	if db.IsEmpty() {
		t.Error("IsEmpty() = true, want false for a non-empty object set")
	}
}

func TestNewEmptyObjectSetIsEmptyButLadderNonEmpty(t *testing.T) {
	space := testSpace(t)

	db, err := New(space, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !db.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
	if len(db.Resolutions()) == 0 {
		t.Error("expected at least one resolution level even with zero objects")
	}
}

func TestAutoLadderConverges(t *testing.T) {
	space := testSpace(t)
	objs := gridObjects(16) // 256 distinct points
	// One shared value, so coarsened points can merge: a level never holds
	// fewer objects than there are distinct values.
	for i := range objs {
		objs[i].Value = geom.NewCoordinate(0)
	}

	max := 16
	db, err := New(space, objs, nil, &max)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	coarsest := db.Resolutions()[db.LowestResolution()]
	if coarsest.Index().Len() > 64 { // generous bound; must have shrunk substantially
		t.Errorf("coarsest level has %d elements, expected it to have shrunk well below the full %d", coarsest.Index().Len(), len(objs))
	}
}

func TestExplicitScalesLadderOrdersByThreshold(t *testing.T) {
	space := testSpace(t)
	objs := gridObjects(8)

	scales := [][]uint32{{2, 2}, {0, 0}, {1, 1}}
	db, err := New(space, objs, scales, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(db.Resolutions()) != 3 {
		t.Fatalf("len(Resolutions()) = %d, want 3", len(db.Resolutions()))
	}
	for i := 1; i < len(db.Resolutions()); i++ {
		if db.Resolutions()[i].Threshold() < db.Resolutions()[i-1].Threshold() {
			t.Errorf("resolutions not sorted ascending by threshold: %v", db.Resolutions())
		}
	}
}

func TestExplicitScalesRejectsUnequalComponents(t *testing.T) {
	space := testSpace(t)
	_, err := New(space, gridObjects(2), [][]uint32{{1, 2}}, nil)
	if err == nil {
		t.Fatal("expected error for a scale vector with unequal components")
	}
	if _, ok := err.(*ErrInvalidScale); !ok {
		t.Errorf("error type = %T, want *ErrInvalidScale", err)
	}
}

func TestGetByIDRoundTripsValue(t *testing.T) {
	space := testSpace(t)
	objs := gridObjects(4)

	db, err := New(space, objs, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	target := objs[0]
	results, err := db.GetByID(target.Value, QueryParameters{ThresholdVolume: floatPtr(0)})
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(results) != 1 || !results[0].Position.Equal(target.Position) {
		t.Errorf("GetByID() = %v, want one match at %v", results, target.Position)
	}
}

func TestGetByIDUnknownReturnsEmpty(t *testing.T) {
	space := testSpace(t)
	db, err := New(space, gridObjects(2), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := db.GetByID(geom.NewCoordinate(999999), QueryParameters{})
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("GetByID() for unknown id = %v, want empty", results)
	}
}

func TestGetByPositionsDecodesOriginalValue(t *testing.T) {
	space := testSpace(t)
	objs := gridObjects(4)

	db, err := New(space, objs, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := db.GetByPositions([]geom.Position{objs[0].Position}, QueryParameters{ThresholdVolume: floatPtr(0)})
	if err != nil {
		t.Fatalf("GetByPositions: %v", err)
	}
	if len(results) != 1 || !results[0].Value.Equal(objs[0].Value) {
		t.Errorf("GetByPositions() = %v, want value %v", results, objs[0].Value)
	}
}

func TestGetByShapeAppliesViewport(t *testing.T) {
	space := testSpace(t)
	objs := gridObjects(4)

	db, err := New(space, objs, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	box, err := geom.NewBoundingBox(geom.PositionFromInts(0, 0), geom.PositionFromInts(8, 8))
	if err != nil {
		t.Fatalf("NewBoundingBox: %v", err)
	}
	viewport, err := geom.NewBoundingBox(geom.PositionFromInts(0, 0), geom.PositionFromInts(0, 0))
	if err != nil {
		t.Fatalf("NewBoundingBox: %v", err)
	}

	results, err := db.GetByShape(box, QueryParameters{ThresholdVolume: floatPtr(0), ViewPort: &viewport})
	if err != nil {
		t.Fatalf("GetByShape: %v", err)
	}
	for _, r := range results {
		if !viewport.Contains(r.Position) {
			t.Errorf("result %v falls outside viewport", r)
		}
	}
}

func TestGetResolutionFallsBackToLowestOnUnmatchedScale(t *testing.T) {
	space := testSpace(t)
	scales := [][]uint32{{0, 0}, {1, 1}}
	db, err := New(space, gridObjects(4), scales, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := db.GetResolution(QueryParameters{Resolution: []uint32{99, 99}})
	if got != db.LowestResolution() {
		t.Errorf("GetResolution() with unmatched scale = %d, want lowest resolution %d", got, db.LowestResolution())
	}
}

func TestDimensionMismatchReturnsTypedError(t *testing.T) {
	space := testSpace(t)
	bad := []geom.SpaceSetObject{{Position: geom.PositionFromInts(1, 2, 3), Value: geom.NewCoordinate(1)}}

	_, err := New(space, bad, nil, nil)
	if _, ok := err.(*ErrDimensionMismatch); !ok {
		t.Errorf("error type = %T, want *ErrDimensionMismatch", err)
	}
}

func floatPtr(f float64) *float64 { return &f }
