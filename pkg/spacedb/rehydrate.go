package spacedb

import (
	"fmt"

	"github.com/spacedb/spacedb/internal/mortonindex"
	"github.com/spacedb/spacedb/internal/obslog"
	"github.com/spacedb/spacedb/pkg/geom"
)

// RehydrateLevel is one precomputed ladder level as read back from a
// serialized image: objects already coarsened and deduplicated, paired with
// the scale/shift/threshold metadata the original build computed.
type RehydrateLevel struct {
	Threshold float64
	Scale     []uint32
	Shift     uint32
	Objects   []geom.SpaceSetObject
}

// Rehydrate reconstructs a SpaceDB from a previously built ladder without
// re-running resolution construction, so loading a stored image costs one
// mortonindex build per level rather than a full New.
func Rehydrate(referenceSpaceName string, dimensions int, cellBits uint, values []geom.Coordinate, levels []RehydrateLevel, opts ...Option) (*SpaceDB, error) {
	options := buildOptions{cellBits: cellBits, logger: obslog.Nop()}
	for _, opt := range opts {
		opt(&options)
	}

	resolutions := make([]LadderLevel, len(levels))
	for i, lvl := range levels {
		idx, err := mortonindex.New(referenceSpaceName, lvl.Objects, dimensions, options.cellBits)
		if err != nil {
			return nil, fmt.Errorf("spacedb: rehydrate level %d: %w", i, err)
		}
		resolutions[i] = LadderLevel{threshold: lvl.Threshold, scale: lvl.Scale, shift: lvl.Shift, index: idx}
	}
	if len(resolutions) == 0 {
		return nil, &ErrEmptyLadder{}
	}

	return &SpaceDB{
		referenceSpaceName: referenceSpaceName,
		dimensions:         dimensions,
		values:             values,
		resolutions:        resolutions,
		logger:             options.logger,
	}, nil
}
