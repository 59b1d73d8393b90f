package spacedb

import "github.com/spacedb/spacedb/pkg/geom"

// QueryParameters is the single argument every query entry point takes.
// Catalog, ThresholdVolume, ViewPort and Resolution are all optional;
// OutputSpace is carried through untouched — it is consumed by the
// enclosing database layer, not by SpaceDB itself, to transform results
// into a different space after the query runs.
type QueryParameters struct {
	// Catalog is the collection the SpaceDB was registered in. May be nil;
	// SpaceDB's query methods do not read it.
	Catalog *Catalog

	// OutputSpace names the space results should eventually be expressed
	// in. The core does not use this value; it is forwarded for the
	// enclosing layer's benefit.
	OutputSpace string

	// ThresholdVolume selects a resolution level by query volume, when
	// Resolution is not set.
	ThresholdVolume *float64

	// ViewPort is an optional Shape, already expressed in the reference
	// space, that filters query results by containment.
	ViewPort *geom.Shape

	// Resolution explicitly selects a resolution level by scale vector,
	// taking precedence over ThresholdVolume.
	Resolution []uint32
}
