// Package mortonindex implements a Morton-coded point table: a store of
// SpaceSetObjects keyed by Position that answers exact, value, and shape
// queries. Entries are kept sorted by Morton code, and spatial queries are
// answered with an R-tree built over the unique Positions.
package mortonindex

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/spacedb/spacedb/pkg/geom"
)

// SpaceFields identifies a value offset scoped to a named space, used by
// FindByValue to fingerprint a lookup.
type SpaceFields struct {
	Space  string
	Offset uint64
}

// SpaceSetIndex is a Morton-coded point table: a read-only, immutable index
// over a fixed set of SpaceSetObjects built once at construction time.
type SpaceSetIndex struct {
	spaceName  string
	dimensions int
	cellBits   uint

	entries  []geom.SpaceSetObject // Morton-ordered
	morton   []uint64              // parallel to entries
	byMorton map[uint64][]int
	byValue  map[uint64][]int
	tree     *rtreego.Rtree
}

// New builds a SpaceSetIndex over points. cellBits is the number of bits
// reserved per axis in the Morton code; dimensions*cellBits must not exceed
// 64. spaceName scopes FindByValue lookups to this index's owning space.
func New(spaceName string, points []geom.SpaceSetObject, dimensions int, cellBits uint) (*SpaceSetIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("mortonindex: dimensions must be positive, got %d", dimensions)
	}
	if uint(dimensions)*cellBits > 64 {
		return nil, fmt.Errorf("mortonindex: dimensions(%d) * cellBits(%d) = %d exceeds 64",
			dimensions, cellBits, uint(dimensions)*cellBits)
	}

	idx := &SpaceSetIndex{
		spaceName:  spaceName,
		dimensions: dimensions,
		cellBits:   cellBits,
		byMorton:   make(map[uint64][]int),
		byValue:    make(map[uint64][]int),
	}

	// Deduplicate exact (Position, Value) tuples; SpaceSetObject equality
	// is defined over the full tuple.
	seen := make(map[uint64]struct{}, len(points))
	for _, obj := range points {
		if obj.Position.Dimensions() != dimensions {
			return nil, fmt.Errorf("mortonindex: object position has dimension %d, expected %d",
				obj.Position.Dimensions(), dimensions)
		}
		h := obj.Hash64()
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		idx.entries = append(idx.entries, obj)
	}

	idx.morton = make([]uint64, len(idx.entries))
	for i, obj := range idx.entries {
		idx.morton[i] = mortonCode(obj.Position, cellBits)
	}

	order := make([]int, len(idx.entries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return idx.morton[order[a]] < idx.morton[order[b]] })

	sortedEntries := make([]geom.SpaceSetObject, len(order))
	sortedMorton := make([]uint64, len(order))
	for newIdx, oldIdx := range order {
		sortedEntries[newIdx] = idx.entries[oldIdx]
		sortedMorton[newIdx] = idx.morton[oldIdx]
	}
	idx.entries = sortedEntries
	idx.morton = sortedMorton

	for i, obj := range idx.entries {
		idx.byMorton[idx.morton[i]] = append(idx.byMorton[idx.morton[i]], i)
		idx.byValue[obj.Value.Uint64()] = append(idx.byValue[obj.Value.Uint64()], i)
	}

	idx.tree = buildTree(idx.entries, dimensions)

	return idx, nil
}

// Len returns the number of distinct SpaceSetObjects held by the index.
func (idx *SpaceSetIndex) Len() int { return len(idx.entries) }

// Entries returns the index's Morton-ordered SpaceSetObjects, for callers
// that need to persist or rebuild the index (e.g. the binary codec).
func (idx *SpaceSetIndex) Entries() []geom.SpaceSetObject {
	return append([]geom.SpaceSetObject(nil), idx.entries...)
}

// CellBits returns the per-axis Morton resolution the index was built with.
func (idx *SpaceSetIndex) CellBits() uint { return idx.cellBits }

// Dimensions returns the dimension of Positions the index was built over.
func (idx *SpaceSetIndex) Dimensions() int { return idx.dimensions }

// SpaceName returns the name of the space this index was built against.
func (idx *SpaceSetIndex) SpaceName() string { return idx.spaceName }

// mortonCode interleaves the low cellBits bits of each axis of p into a
// single uint64, bit i of axis d landing at output bit i*dimensions+d.
func mortonCode(p geom.Position, cellBits uint) uint64 {
	var code uint64
	for i := uint(0); i < cellBits; i++ {
		for d := 0; d < p.Dimensions(); d++ {
			bit := (p[d].Uint64() >> i) & 1
			code |= bit << (i*uint(p.Dimensions()) + uint(d))
		}
	}
	return code
}

// positionNode groups every entry index sharing one exact Position, so the
// R-tree holds one rectangle per unique point rather than one per object.
type positionNode struct {
	position geom.Position
	indices  []int
}

// cellTol is the half-side of the box placed around a point's integer view:
// rtreego rejects zero-length sides, and two boxes of side 2*cellTol around
// distinct integer points never overlap.
const cellTol = 0.25

// pointRect returns the R-tree rectangle for p, centred on its integer view
// (the view Position.Equal compares).
func pointRect(p geom.Position) rtreego.Rect {
	point := make(rtreego.Point, p.Dimensions())
	for k := range point {
		point[k] = float64(p[k].Uint64())
	}
	return point.ToRect(cellTol)
}

func (n *positionNode) Bounds() rtreego.Rect {
	return pointRect(n.position)
}

func buildTree(entries []geom.SpaceSetObject, dimensions int) *rtreego.Rtree {
	tree := rtreego.NewTree(dimensions, 25, 50)

	byPosition := make(map[uint64]*positionNode)
	var order []uint64
	for i, obj := range entries {
		h := obj.Position.Hash64()
		node, ok := byPosition[h]
		if !ok {
			node = &positionNode{position: obj.Position}
			byPosition[h] = node
			order = append(order, h)
		}
		node.indices = append(node.indices, i)
	}
	for _, h := range order {
		tree.Insert(byPosition[h])
	}
	return tree
}

// Find returns every SpaceSetObject stored at the exact Position.
func (idx *SpaceSetIndex) Find(position geom.Position) []geom.SpaceSetObject {
	code := mortonCode(position, idx.cellBits)
	var out []geom.SpaceSetObject
	for _, i := range idx.byMorton[code] {
		if idx.entries[i].Position.Equal(position) {
			out = append(out, idx.entries[i])
		}
	}
	return out
}

// FindByValue returns every SpaceSetObject whose value offset matches
// fields, provided fields.Space names this index's owning space.
func (idx *SpaceSetIndex) FindByValue(fields SpaceFields) []geom.SpaceSetObject {
	if fields.Space != idx.spaceName {
		return nil
	}
	var out []geom.SpaceSetObject
	for _, i := range idx.byValue[fields.Offset] {
		out = append(out, idx.entries[i])
	}
	return out
}

// FindByShape rasterises shape, unions the exact lookup of each rasterised
// Position (routed through the R-tree via rtreego.SearchIntersect),
// intersects with viewport if present, and returns a duplicate-free set.
func (idx *SpaceSetIndex) FindByShape(shape geom.Shape, viewport *geom.Shape) ([]geom.SpaceSetObject, error) {
	points, err := shape.Rasterise()
	if err != nil {
		return nil, fmt.Errorf("mortonindex: find_by_shape: %w", err)
	}

	seen := make(map[int]struct{})
	var out []geom.SpaceSetObject
	for _, p := range points {
		for _, spatial := range idx.tree.SearchIntersect(pointRect(p)) {
			node := spatial.(*positionNode)
			if !node.position.Equal(p) {
				continue
			}
			for _, i := range node.indices {
				if _, dup := seen[i]; dup {
					continue
				}
				obj := idx.entries[i]
				if viewport != nil && !viewport.Contains(obj.Position) {
					continue
				}
				seen[i] = struct{}{}
				out = append(out, obj)
			}
		}
	}
	return out, nil
}
