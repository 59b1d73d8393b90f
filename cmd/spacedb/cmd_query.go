package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacedb/spacedb/internal/codec"
	"github.com/spacedb/spacedb/internal/resultcache"
	"github.com/spacedb/spacedb/pkg/geom"
	"github.com/spacedb/spacedb/pkg/spacedb"
)

var (
	queryDBPath      string
	querySpace       string
	queryMode        string
	queryID          float64
	queryLabel       string
	queryPositions   []string
	queryShape       string
	queryViewport    string
	queryThreshold   float64
	queryResolution  string
	queryCacheSize   int64
)

var cache *resultcache.Cache

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a .sdb binary image",
	Long: `query loads a binary image written by "build" and answers a single
point, identifier, label, or shape query against it.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDBPath, "db", "", "path to a .sdb binary image (required)")
	queryCmd.Flags().StringVar(&querySpace, "space", "", "space to query (defaults to the image's only space)")
	queryCmd.Flags().StringVar(&queryMode, "mode", "id", "query mode: id, label, position, or shape")
	queryCmd.Flags().Float64Var(&queryID, "id", 0, "identifier value for --mode=id")
	queryCmd.Flags().StringVar(&queryLabel, "label", "", "label for --mode=label")
	queryCmd.Flags().StringArrayVar(&queryPositions, "position", nil, "comma-separated continuous coordinates for --mode=position (repeatable)")
	queryCmd.Flags().StringVar(&queryShape, "shape", "", `shape for --mode=shape: "box:lo,lo,lo:hi,hi,hi" or "sphere:c,c,c:radius"`)
	queryCmd.Flags().StringVar(&queryViewport, "viewport", "", "optional viewport box, same box syntax as --shape without the \"box:\" prefix")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold-volume", 0, "select a resolution by query volume")
	queryCmd.Flags().StringVar(&queryResolution, "resolution", "", "comma-separated scale vector, selects a resolution directly")
	queryCmd.Flags().Int64Var(&queryCacheSize, "cache-objects", 10000, "result cache capacity in objects (0 disables caching)")
	_ = queryCmd.MarkFlagRequired("db")
}

func loadCatalog(path string) (*spacedb.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("query: read %s: %w", path, err)
	}
	cat, err := codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("query: decode %s: %w", path, err)
	}
	return cat, nil
}

func resolveSpaceName(cat *spacedb.Catalog, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	names := cat.SpaceNames()
	if len(names) != 1 {
		return "", fmt.Errorf("query: --space is required when the image has %d spaces", len(names))
	}
	return names[0], nil
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseShape(spec string, space *geom.Space) (geom.Shape, error) {
	parts := strings.SplitN(spec, ":", 2)
	kind, body := parts[0], ""
	if len(parts) == 2 {
		body = parts[1]
	}
	switch kind {
	case "box":
		boxParts := strings.Split(body, ":")
		if len(boxParts) != 2 {
			return geom.Shape{}, fmt.Errorf("query: --shape box needs \"lo:hi\"")
		}
		lo, err := parseFloatList(boxParts[0])
		if err != nil {
			return geom.Shape{}, err
		}
		hi, err := parseFloatList(boxParts[1])
		if err != nil {
			return geom.Shape{}, err
		}
		loPos, err := space.Encode(lo)
		if err != nil {
			return geom.Shape{}, err
		}
		hiPos, err := space.Encode(hi)
		if err != nil {
			return geom.Shape{}, err
		}
		return geom.NewBoundingBox(loPos, hiPos)
	case "sphere":
		sphereParts := strings.Split(body, ":")
		if len(sphereParts) != 2 {
			return geom.Shape{}, fmt.Errorf("query: --shape sphere needs \"center:radius\"")
		}
		center, err := parseFloatList(sphereParts[0])
		if err != nil {
			return geom.Shape{}, err
		}
		radius, err := strconv.ParseFloat(strings.TrimSpace(sphereParts[1]), 64)
		if err != nil {
			return geom.Shape{}, err
		}
		centerPos, err := space.Encode(center)
		if err != nil {
			return geom.Shape{}, err
		}
		return geom.NewHyperSphere(centerPos, geom.NewCoordinateFromFloat(radius))
	default:
		return geom.Shape{}, fmt.Errorf("query: unknown shape kind %q", kind)
	}
}

func parseBox(spec string, space *geom.Space) (*geom.Shape, error) {
	if spec == "" {
		return nil, nil
	}
	shape, err := parseShape("box:"+spec, space)
	if err != nil {
		return nil, err
	}
	return &shape, nil
}

func parseResolution(spec string) ([]uint32, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	out := make([]uint32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, err
		}
		out[i] = uint32(v)
	}
	return out, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(queryDBPath)
	if err != nil {
		return err
	}

	spaceName, err := resolveSpaceName(cat, querySpace)
	if err != nil {
		return err
	}
	space, err := cat.Space(spaceName)
	if err != nil {
		return err
	}
	db, err := cat.SpaceDB(spaceName)
	if err != nil {
		return err
	}

	viewport, err := parseBox(queryViewport, space)
	if err != nil {
		return fmt.Errorf("query: --viewport: %w", err)
	}
	resolution, err := parseResolution(queryResolution)
	if err != nil {
		return fmt.Errorf("query: --resolution: %w", err)
	}

	params := spacedb.QueryParameters{Catalog: cat, ViewPort: viewport, Resolution: resolution}
	if queryResolution == "" {
		params.ThresholdVolume = &queryThreshold
	}

	if cache == nil && queryCacheSize > 0 {
		cache = resultcache.New(queryCacheSize)
	}

	key := fmt.Sprintf("%s|%s|id=%v|label=%v|pos=%v|shape=%v|vp=%v|res=%v|th=%v",
		spaceName, queryMode, queryID, queryLabel, queryPositions, queryShape, queryViewport, queryResolution, queryThreshold)

	fetch := func() ([]geom.SpaceSetObject, error) {
		switch queryMode {
		case "id":
			return db.GetByID(geom.NewCoordinateFromFloat(queryID), params)
		case "position":
			positions := make([]geom.Position, len(queryPositions))
			for i, p := range queryPositions {
				vals, err := parseFloatList(p)
				if err != nil {
					return nil, err
				}
				pos, err := space.Encode(vals)
				if err != nil {
					return nil, err
				}
				positions[i] = pos
			}
			return db.GetByPositions(positions, params)
		case "shape":
			shape, err := parseShape(queryShape, space)
			if err != nil {
				return nil, err
			}
			return db.GetByShape(shape, params)
		default:
			return nil, fmt.Errorf("query: unknown mode %q", queryMode)
		}
	}

	var results []geom.SpaceSetObject
	if queryMode == "label" {
		labelled, err := db.GetByLabel(queryLabel, params)
		if err != nil {
			return err
		}
		return printJSON(cmd, labelled)
	} else if cache != nil {
		results, err = cache.Get(key, fetch)
	} else {
		results, err = fetch()
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, results)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
