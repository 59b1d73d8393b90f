package spacedb

import (
	"hash/fnv"

	"github.com/spacedb/spacedb/pkg/geom"
)

// SpaceSetObjectWithLabel is GetByLabel's result type: a Position paired
// with the caller's original label rather than a dictionary-decoded
// Coordinate.
type SpaceSetObjectWithLabel struct {
	Position geom.Position
	Label    string
}

// LabelToValue hashes an opaque caller label to the Coordinate space
// GetByID searches, via FNV-1a. GetByLabel is a thin convenience over
// GetByID for callers that never dealt in Coordinate-typed identifiers to
// begin with and only ever had opaque string labels, not dictionary-encoded
// numbers.
func LabelToValue(label string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))
	return h.Sum64()
}

// GetByLabel is GetByID with the identifier expressed as an opaque string
// label instead of a Coordinate, for callers whose caller-supplied
// identifiers were always opaque strings rather than dictionary-encodable
// numbers.
func (db *SpaceDB) GetByLabel(label string, params QueryParameters) ([]SpaceSetObjectWithLabel, error) {
	id := LabelToValue(label)
	objects, err := db.getByIDValue(id, params)
	if err != nil {
		return nil, err
	}
	out := make([]SpaceSetObjectWithLabel, len(objects))
	for i, obj := range objects {
		out[i] = SpaceSetObjectWithLabel{Position: obj.Position, Label: label}
	}
	return out, nil
}
