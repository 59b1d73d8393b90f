package codec

import (
	"testing"

	"github.com/spacedb/spacedb/pkg/geom"
	"github.com/spacedb/spacedb/pkg/spacedb"
)

func buildTestCatalog(t *testing.T) *spacedb.Catalog {
	t.Helper()
	space, err := geom.NewSpace("std", 2, []float64{0, 0}, []float64{1, 1}, []float64{0, 0}, []float64{1, 1}, 10)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}

	objs := []geom.SpaceSetObject{
		{Position: geom.PositionFromInts(0, 0), Value: geom.NewCoordinate(1)},
		{Position: geom.PositionFromInts(4, 4), Value: geom.NewCoordinate(2)},
		{Position: geom.PositionFromInts(8, 8), Value: geom.NewCoordinate(3)},
	}
	db, err := spacedb.New(space, objs, nil, nil)
	if err != nil {
		t.Fatalf("spacedb.New: %v", err)
	}

	cat := spacedb.NewCatalog()
	cat.AddSpace(space)
	cat.AddSpaceDB("std", db)
	return cat
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cat := buildTestCatalog(t)

	data, err := Encode(cat)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	space, err := decoded.Space("std")
	if err != nil {
		t.Fatalf("Space: %v", err)
	}
	if space.Dimensions() != 2 {
		t.Errorf("Dimensions() = %d, want 2", space.Dimensions())
	}

	db, err := decoded.SpaceDB("std")
	if err != nil {
		t.Fatalf("SpaceDB: %v", err)
	}
	if len(db.Values()) != 3 {
		t.Errorf("len(Values()) = %d, want 3", len(db.Values()))
	}

	results, err := db.GetByPositions([]geom.Position{geom.PositionFromInts(0, 0)}, spacedb.QueryParameters{})
	if err != nil {
		t.Fatalf("GetByPositions: %v", err)
	}
	if len(results) != 1 || results[0].Value.Uint64() != 1 {
		t.Errorf("GetByPositions() after round trip = %v, want value 1", results)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	cat := buildTestCatalog(t)
	data, err := Encode(cat)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Corrupt the first 'v' byte of the image, the leading byte of the
	// "version" map key: the decoded image then carries no version and
	// fails the version check without crashing the CBOR decoder.
	mutated := append([]byte(nil), data...)
	for i, b := range mutated {
		if b == 'v' {
			mutated[i] = 'x'
			break
		}
	}

	if _, err := Decode(mutated); err == nil {
		t.Fatal("expected an error decoding an image with an unrecognized version")
	}
}
