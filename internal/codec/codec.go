// Package codec serializes a catalog of Spaces and SpaceDBs to and from a
// single versioned binary image: load the whole deserialized collection in
// one call, so the query path never has to parse JSON.
package codec

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/spacedb/spacedb/pkg/geom"
	"github.com/spacedb/spacedb/pkg/spacedb"
)

// formatVersion is bumped whenever the on-disk shape changes incompatibly.
const formatVersion = "v0.1"

// image is the exact shape written to disk.
type image struct {
	Version string       `cbor:"version"`
	Spaces  []spaceDTO   `cbor:"spaces"`
	DBs     []spaceDBDTO `cbor:"dbs"`
}

type spaceDTO struct {
	Name       string    `cbor:"name"`
	Dimensions int       `cbor:"dimensions"`
	Origin     []float64 `cbor:"origin"`
	Scale      []float64 `cbor:"scale"`
	Lo         []float64 `cbor:"lo"`
	Hi         []float64 `cbor:"hi"`
	GridBits   uint      `cbor:"grid_bits"`
}

type spaceDBDTO struct {
	ReferenceSpace string      `cbor:"reference_space"`
	Dimensions     int         `cbor:"dimensions"`
	CellBits       uint        `cbor:"cell_bits"`
	Values         []uint64    `cbor:"values"`
	Levels         []ladderDTO `cbor:"levels"`
}

type ladderDTO struct {
	Threshold float64     `cbor:"threshold"`
	Scale     []uint32    `cbor:"scale"`
	Shift     uint32      `cbor:"shift"`
	Objects   []objectDTO `cbor:"objects"`
}

type objectDTO struct {
	Position []uint64 `cbor:"position"`
	Value    uint64   `cbor:"value"`
}

// Encode serializes every Space and SpaceDB registered in cat into a single
// versioned binary image.
func Encode(cat *spacedb.Catalog) ([]byte, error) {
	img := image{Version: formatVersion}

	for _, name := range cat.SpaceNames() {
		space, err := cat.Space(name)
		if err != nil {
			return nil, fmt.Errorf("codec: encode: %w", err)
		}
		img.Spaces = append(img.Spaces, spaceToDTO(space))

		db, err := cat.SpaceDB(name)
		if err != nil {
			// Not every registered Space necessarily has a built SpaceDB.
			continue
		}
		img.DBs = append(img.DBs, spaceDBToDTO(name, db))
	}

	buf, err := cbor.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal: %w", err)
	}
	return buf, nil
}

// Decode rebuilds a Catalog from a binary image produced by Encode.
func Decode(data []byte) (*spacedb.Catalog, error) {
	var img image
	if err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&img); err != nil {
		return nil, fmt.Errorf("codec: unmarshal: %w", err)
	}
	if img.Version != formatVersion {
		return nil, fmt.Errorf("codec: unsupported image version %q, expected %q", img.Version, formatVersion)
	}

	cat := spacedb.NewCatalog()
	spaces := make(map[string]*geom.Space, len(img.Spaces))
	for _, dto := range img.Spaces {
		space, err := dtoToSpace(dto)
		if err != nil {
			return nil, fmt.Errorf("codec: decode space %q: %w", dto.Name, err)
		}
		spaces[dto.Name] = space
		cat.AddSpace(space)
	}

	for _, dto := range img.DBs {
		if _, ok := spaces[dto.ReferenceSpace]; !ok {
			return nil, fmt.Errorf("codec: decode: space %q not found for db", dto.ReferenceSpace)
		}
		db, err := dtoToSpaceDB(dto)
		if err != nil {
			return nil, fmt.Errorf("codec: decode db %q: %w", dto.ReferenceSpace, err)
		}
		cat.AddSpaceDB(dto.ReferenceSpace, db)
	}

	return cat, nil
}

func spaceToDTO(s *geom.Space) spaceDTO {
	return spaceDTO{
		Name:       s.Name(),
		Dimensions: s.Dimensions(),
		Origin:     s.Origin(),
		Scale:      s.Scale(),
		Lo:         s.Lo(),
		Hi:         s.Hi(),
		GridBits:   s.GridBits(),
	}
}

func dtoToSpace(dto spaceDTO) (*geom.Space, error) {
	return geom.NewSpace(dto.Name, dto.Dimensions, dto.Origin, dto.Scale, dto.Lo, dto.Hi, dto.GridBits)
}

// spaceDBToDTO flattens a built SpaceDB back down to the raw objects each
// ladder level holds (already coarsened and deduplicated), so Decode can
// rebuild each level's index directly via spacedb.Rehydrate rather than
// re-running ladder construction.
func spaceDBToDTO(name string, db *spacedb.SpaceDB) spaceDBDTO {
	values := make([]uint64, len(db.Values()))
	for i, v := range db.Values() {
		values[i] = v.Uint64()
	}

	dto := spaceDBDTO{ReferenceSpace: name, Values: values}
	for i, level := range db.Resolutions() {
		idx := level.Index()
		if i == 0 {
			dto.Dimensions = idx.Dimensions()
			dto.CellBits = idx.CellBits()
		}

		entries := idx.Entries()
		objects := make([]objectDTO, len(entries))
		for k, obj := range entries {
			pos := make([]uint64, obj.Position.Dimensions())
			for d := range pos {
				pos[d] = obj.Position.Get(d).Uint64()
			}
			objects[k] = objectDTO{Position: pos, Value: obj.Value.Uint64()}
		}

		dto.Levels = append(dto.Levels, ladderDTO{
			Threshold: level.Threshold(),
			Scale:     level.Scale(),
			Shift:     level.Shift(),
			Objects:   objects,
		})
	}
	return dto
}

func dtoToSpaceDB(dto spaceDBDTO) (*spacedb.SpaceDB, error) {
	values := make([]geom.Coordinate, len(dto.Values))
	for i, v := range dto.Values {
		values[i] = geom.NewCoordinate(v)
	}

	levels := make([]spacedb.RehydrateLevel, len(dto.Levels))
	for i, ldto := range dto.Levels {
		objects := make([]geom.SpaceSetObject, len(ldto.Objects))
		for k, odto := range ldto.Objects {
			objects[k] = geom.SpaceSetObject{
				Position: geom.PositionFromInts(odto.Position...),
				Value:    geom.NewCoordinate(odto.Value),
			}
		}
		levels[i] = spacedb.RehydrateLevel{
			Threshold: ldto.Threshold,
			Scale:     ldto.Scale,
			Shift:     ldto.Shift,
			Objects:   objects,
		}
	}

	return spacedb.Rehydrate(dto.ReferenceSpace, dto.Dimensions, dto.CellBits, values, levels)
}
