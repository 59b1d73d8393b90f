// Package spacedb implements SpaceDB: the per-space multi-resolution index
// plus value dictionary. It is the top-level query surface of the core —
// construction builds a ladder of progressively coarsened
// mortonindex.SpaceSetIndex levels from a point set, and queries select a
// level, search it, and decode the caller-visible identifiers back out of
// the value dictionary.
package spacedb

import (
	"fmt"
	"math"
	"sort"

	"github.com/spacedb/spacedb/internal/mortonindex"
	"github.com/spacedb/spacedb/internal/obslog"
	"github.com/spacedb/spacedb/pkg/geom"
)

const defaultCellBits = 10

// LadderLevel is a single rung of the resolution ladder, pairing a volume
// threshold and scale vector with the SpaceSetIndex that answers queries
// at that resolution.
type LadderLevel struct {
	threshold float64
	scale     []uint32
	shift     uint32
	index     *mortonindex.SpaceSetIndex
}

func (l LadderLevel) Threshold() float64                    { return l.threshold }
func (l LadderLevel) Scale() []uint32                        { return append([]uint32(nil), l.scale...) }
func (l LadderLevel) Shift() uint32                          { return l.shift }
func (l LadderLevel) Index() *mortonindex.SpaceSetIndex       { return l.index }

// SpaceDB is the per-space multi-resolution index plus value dictionary.
type SpaceDB struct {
	referenceSpaceName string
	dimensions         int
	values             []geom.Coordinate // sorted ascending by integer view, duplicate-free
	resolutions        []LadderLevel     // sorted ascending by threshold
	logger             *obslog.Logger
}

// Option configures SpaceDB.New.
type Option func(*buildOptions)

type buildOptions struct {
	cellBits uint
	logger   *obslog.Logger
}

// WithCellBits overrides the default 10-bit-per-axis Morton resolution.
func WithCellBits(bits uint) Option {
	return func(o *buildOptions) { o.cellBits = bits }
}

// WithLogger attaches a logger for build/query warnings. Defaults to a
// no-op logger.
func WithLogger(l *obslog.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// New builds a SpaceDB from a reference Space and a batch of
// SpaceSetObjects.
//
// If scales is non-empty, each entry is an explicit per-level scale vector
// (d bit-shift components, which must currently all be equal). If
// scales is empty and maxElements is non-nil, the ladder is generated
// automatically by repeatedly halving precision until the element count
// falls at or below *maxElements, which is first raised to the number of
// distinct values when it is smaller. If both are empty/nil, exactly one
// full-resolution level is produced.
func New(referenceSpace *geom.Space, objects []geom.SpaceSetObject, scales [][]uint32, maxElements *int, opts ...Option) (*SpaceDB, error) {
	options := buildOptions{cellBits: defaultCellBits, logger: obslog.Nop()}
	for _, opt := range opts {
		opt(&options)
	}

	dims := referenceSpace.Dimensions()
	for _, obj := range objects {
		if obj.Position.Dimensions() != dims {
			return nil, &ErrDimensionMismatch{Context: "SpaceDB.New object position", Expected: dims, Got: obj.Position.Dimensions()}
		}
	}

	values, rewritten := buildValueDictionary(objects)

	var levels []LadderLevel
	var err error
	switch {
	case len(scales) > 0:
		levels, err = buildExplicitLadder(referenceSpace.Name(), rewritten, dims, options.cellBits, scales)
	case maxElements != nil:
		levels, err = buildAutoLadder(referenceSpace.Name(), rewritten, dims, options.cellBits, maxElementsOrDictSize(*maxElements, len(values)))
	default:
		levels, err = buildSingleLevelLadder(referenceSpace.Name(), rewritten, dims, options.cellBits)
	}
	if err != nil {
		return nil, err
	}

	assignThresholds(levels, referenceSpace.Volume())

	sort.SliceStable(levels, func(i, j int) bool { return levels[i].threshold < levels[j].threshold })

	if len(levels) == 0 {
		return nil, &ErrEmptyLadder{}
	}

	return &SpaceDB{
		referenceSpaceName: referenceSpace.Name(),
		dimensions:         dims,
		values:             values,
		resolutions:        levels,
		logger:             options.logger,
	}, nil
}

func maxElementsOrDictSize(maxElements, dictSize int) int {
	if dictSize > maxElements {
		return dictSize
	}
	return maxElements
}

// buildValueDictionary collects the distinct values carried by objects,
// sorts them ascending by integer view, and rewrites each object's value to
// its offset into the dictionary.
func buildValueDictionary(objects []geom.SpaceSetObject) ([]geom.Coordinate, []geom.SpaceSetObject) {
	seen := make(map[uint64]geom.Coordinate)
	for _, obj := range objects {
		seen[obj.Value.Uint64()] = obj.Value
	}
	values := make([]geom.Coordinate, 0, len(seen))
	for _, c := range seen {
		values = append(values, c)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Less(values[j]) })

	rewritten := make([]geom.SpaceSetObject, len(objects))
	for i, obj := range objects {
		offset := sort.Search(len(values), func(k int) bool { return !values[k].Less(obj.Value) })
		rewritten[i] = geom.SpaceSetObject{Position: obj.Position, Value: geom.NewCoordinate(uint64(offset))}
	}
	return values, rewritten
}

// dedupeByHash keeps one representative object per distinct (Position,
// Value) hash. This is load-bearing for the coarsening ladder: after
// reducing precision, many points collapse onto the same coarsened
// Position and must collapse to one entry.
func dedupeByHash(objects []geom.SpaceSetObject) []geom.SpaceSetObject {
	seen := make(map[uint64]struct{}, len(objects))
	out := make([]geom.SpaceSetObject, 0, len(objects))
	for _, obj := range objects {
		h := obj.Hash64()
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, obj)
	}
	return out
}

func buildSingleLevelLadder(spaceName string, objects []geom.SpaceSetObject, dims int, cellBits uint) ([]LadderLevel, error) {
	idx, err := mortonindex.New(spaceName, objects, dims, cellBits)
	if err != nil {
		return nil, fmt.Errorf("spacedb: build full-resolution level: %w", err)
	}
	return []LadderLevel{{scale: uniform(dims, 0), shift: 0, index: idx}}, nil
}

func buildExplicitLadder(spaceName string, objects []geom.SpaceSetObject, dims int, cellBits uint, scales [][]uint32) ([]LadderLevel, error) {
	type power struct {
		value uint32
		delta uint32
	}

	sorted := append([][]uint32(nil), scales...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	powers := make([]power, 0, len(sorted))
	var previous uint32
	for _, scale := range sorted {
		if len(scale) != dims {
			return nil, &ErrDimensionMismatch{Context: "SpaceDB.New scale vector", Expected: dims, Got: len(scale)}
		}
		for _, c := range scale {
			if c != scale[0] {
				return nil, &ErrInvalidScale{Scale: scale}
			}
		}
		powers = append(powers, power{value: scale[0], delta: scale[0] - previous})
		previous = scale[0]
	}

	levels := make([]LadderLevel, 0, len(powers))
	working := objects
	for i, p := range powers {
		coarsened := make([]geom.SpaceSetObject, len(working))
		for k, obj := range working {
			coarsened[k] = geom.SpaceSetObject{Position: obj.Position.ReducePrecision(uint(p.delta)), Value: obj.Value}
		}
		working = dedupeByHash(coarsened)

		idx, err := mortonindex.New(spaceName, working, dims, cellBits)
		if err != nil {
			return nil, fmt.Errorf("spacedb: build explicit ladder level %d: %w", i, err)
		}

		shift := uint32(i)
		if shift > 31 {
			shift = 31
		}
		levels = append(levels, LadderLevel{scale: uniform(dims, p.value), shift: shift, index: idx})
	}
	return levels, nil
}

func buildAutoLadder(spaceName string, objects []geom.SpaceSetObject, dims int, cellBits uint, maxElements int) ([]LadderLevel, error) {
	levels := make([]LadderLevel, 0)

	fullIdx, err := mortonindex.New(spaceName, objects, dims, cellBits)
	if err != nil {
		return nil, fmt.Errorf("spacedb: build full-resolution level: %w", err)
	}
	levels = append(levels, LadderLevel{scale: uniform(dims, 0), shift: 0, index: fullIdx})

	target := len(objects) / 2
	working := objects
	var count uint32
	for {
		shift := count
		if shift > 31 {
			shift = 31
		}
		count++

		coarsened := make([]geom.SpaceSetObject, len(working))
		for k, obj := range working {
			coarsened[k] = geom.SpaceSetObject{Position: obj.Position.ReducePrecision(1), Value: obj.Value}
		}
		working = dedupeByHash(coarsened)

		// Skip a resolution if it failed to halve the population; storing
		// it would waste space without improving query cost.
		if target < len(working) {
			if count == math.MaxUint32 {
				break
			}
			continue
		}
		target = len(working) / 2

		idx, err := mortonindex.New(spaceName, working, dims, cellBits)
		if err != nil {
			return nil, fmt.Errorf("spacedb: build auto ladder level %d: %w", count, err)
		}
		levels = append(levels, LadderLevel{scale: uniform(dims, count), shift: shift, index: idx})

		if len(working) <= maxElements || count == math.MaxUint32 {
			break
		}
	}
	return levels, nil
}

func uniform(dims int, v uint32) []uint32 {
	s := make([]uint32, dims)
	for i := range s {
		s[i] = v
	}
	return s
}

// assignThresholds sets each level's threshold volume to V / 2^(maxShift -
// shift), where V is the reference space's total volume and maxShift is
// the largest shift among emitted levels. This guarantees the coarsest
// level's threshold is V and the finest level has the smallest threshold.
func assignThresholds(levels []LadderLevel, spaceVolume float64) {
	var maxShift uint32
	for _, l := range levels {
		if l.shift > maxShift {
			maxShift = l.shift
		}
	}
	for i := range levels {
		levels[i].threshold = spaceVolume / math.Pow(2, float64(maxShift-levels[i].shift))
	}
}

// Name returns the reference space's name.
func (db *SpaceDB) Name() string { return db.referenceSpaceName }

// IsEmpty reports whether the value dictionary is empty, i.e. SpaceDB was
// built from zero objects.
func (db *SpaceDB) IsEmpty() bool { return len(db.values) == 0 }

// HighestResolution is the index of the finest (smallest threshold) level.
func (db *SpaceDB) HighestResolution() int { return 0 }

// LowestResolution is the index of the coarsest (largest threshold) level.
func (db *SpaceDB) LowestResolution() int { return len(db.resolutions) - 1 }

// Resolutions returns the ladder, ascending by threshold.
func (db *SpaceDB) Resolutions() []LadderLevel { return db.resolutions }

// Values returns the value dictionary, ascending by integer view.
func (db *SpaceDB) Values() []geom.Coordinate { return append([]geom.Coordinate(nil), db.values...) }

func scaleGreaterOrEqual(a, b []uint32) bool {
	for k := range a {
		if a[k] < b[k] {
			return false
		}
	}
	return true
}

func (db *SpaceDB) defaultResolution(volume float64) int {
	for i, level := range db.resolutions {
		if volume <= level.threshold {
			db.logger.Debug("selected resolution by threshold", "index", i, "threshold", level.threshold, "volume", volume)
			return i
		}
	}
	db.logger.Debug("selected lowest resolution", "threshold", db.resolutions[db.LowestResolution()].threshold, "volume", volume)
	return db.LowestResolution()
}

func (db *SpaceDB) findResolution(scale []uint32) int {
	for i, level := range db.resolutions {
		if scaleGreaterOrEqual(level.scale, scale) {
			db.logger.Debug("selected resolution by scale", "index", i, "scale", level.scale, "requested", scale)
			return i
		}
	}
	db.logger.Warn("scale factors not found, using lowest resolution", "requested", scale, "lowest", db.resolutions[db.LowestResolution()].scale)
	return db.LowestResolution()
}

// GetResolution maps params to a ladder index.
func (db *SpaceDB) GetResolution(params QueryParameters) int {
	if params.Resolution != nil {
		return db.findResolution(params.Resolution)
	}
	if params.ThresholdVolume != nil {
		return db.defaultResolution(*params.ThresholdVolume)
	}
	return db.LowestResolution()
}

func (db *SpaceDB) decode(objects []geom.SpaceSetObject) []geom.SpaceSetObject {
	out := make([]geom.SpaceSetObject, len(objects))
	for i, obj := range objects {
		offset := obj.Value.Uint64()
		if offset >= uint64(len(db.values)) {
			panic(fmt.Sprintf("spacedb: corrupt value offset %d (dictionary has %d entries)", offset, len(db.values)))
		}
		out[i] = geom.SpaceSetObject{Position: obj.Position, Value: db.values[offset]}
	}
	return out
}

func filterByViewport(objects []geom.SpaceSetObject, viewport *geom.Shape) []geom.SpaceSetObject {
	if viewport == nil {
		return objects
	}
	out := make([]geom.SpaceSetObject, 0, len(objects))
	for _, obj := range objects {
		if viewport.Contains(obj.Position) {
			out = append(out, obj)
		}
	}
	return out
}

// GetByID searches for every object originally tagged with id, at the
// resolution params select.
func (db *SpaceDB) GetByID(id geom.Coordinate, params QueryParameters) ([]geom.SpaceSetObject, error) {
	return db.getByIDValue(id.Uint64(), params)
}

// getByIDValue is GetByID's implementation, keyed on the raw integer view
// so GetByLabel can reuse it with an FNV-hashed label instead of a
// caller-constructed Coordinate.
func (db *SpaceDB) getByIDValue(idValue uint64, params QueryParameters) ([]geom.SpaceSetObject, error) {
	id := geom.NewCoordinate(idValue)
	offset := sort.Search(len(db.values), func(k int) bool { return !db.values[k].Less(id) })
	if offset >= len(db.values) || !db.values[offset].Equal(id) {
		return nil, nil
	}

	level := db.resolutions[db.GetResolution(params)]
	results := level.index.FindByValue(mortonindex.SpaceFields{Space: db.referenceSpaceName, Offset: uint64(offset)})
	results = filterByViewport(results, params.ViewPort)

	// Restore the caller's id directly rather than going through the
	// generic dictionary decode, since we already know the single value.
	out := make([]geom.SpaceSetObject, len(results))
	for i, obj := range results {
		out[i] = geom.SpaceSetObject{Position: obj.Position, Value: id}
	}
	return out, nil
}

// GetByPositions searches for objects at each exact Position, at the
// resolution params select, and decodes their values. The optional
// viewport is applied uniformly here too, an open question resolved this
// way deliberately; see DESIGN.md.
func (db *SpaceDB) GetByPositions(positions []geom.Position, params QueryParameters) ([]geom.SpaceSetObject, error) {
	level := db.resolutions[db.GetResolution(params)]

	var results []geom.SpaceSetObject
	for _, p := range positions {
		if p.Dimensions() != db.dimensions {
			return nil, &ErrDimensionMismatch{Context: "SpaceDB.GetByPositions", Expected: db.dimensions, Got: p.Dimensions()}
		}
		results = append(results, level.index.Find(p)...)
	}
	results = filterByViewport(results, params.ViewPort)
	return db.decode(results), nil
}

// GetByShape rasterises shape and searches at the resolution params
// select, applying the optional viewport and decoding the results.
func (db *SpaceDB) GetByShape(shape geom.Shape, params QueryParameters) ([]geom.SpaceSetObject, error) {
	if shape.Dimensions() != db.dimensions {
		return nil, &ErrDimensionMismatch{Context: "SpaceDB.GetByShape", Expected: db.dimensions, Got: shape.Dimensions()}
	}

	level := db.resolutions[db.GetResolution(params)]
	results, err := level.index.FindByShape(shape, params.ViewPort)
	if err != nil {
		return nil, fmt.Errorf("spacedb: get_by_shape: %w", err)
	}
	return db.decode(results), nil
}
