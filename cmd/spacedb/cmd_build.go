package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacedb/spacedb/internal/codec"
	"github.com/spacedb/spacedb/internal/config"
	"github.com/spacedb/spacedb/pkg/geom"
	"github.com/spacedb/spacedb/pkg/spacedb"
)

var (
	buildInputPath  string
	buildOutputPath string
	buildMaxElems   int
	buildScales     []string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a .sdb binary image from a JSON object set",
	Long: `build reads a space definition and a batch of (position, value)
objects from a JSON file, constructs a SpaceDB resolution ladder, and
writes a versioned binary image that "query" and "info" can load.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildInputPath, "input", "", "path to the input JSON file (required)")
	buildCmd.Flags().StringVar(&buildOutputPath, "output", "", "path to write the binary image (required)")
	buildCmd.Flags().IntVar(&buildMaxElems, "max-elements", 0, "target element count for the auto-generated ladder (0 uses the config default)")
	buildCmd.Flags().StringArrayVar(&buildScales, "scale", nil, "explicit ladder scale, e.g. --scale 4,4,4 (repeatable; overrides --max-elements)")
	_ = buildCmd.MarkFlagRequired("input")
	_ = buildCmd.MarkFlagRequired("output")
}

// buildSpaceInput mirrors geom.NewSpace's constructor arguments.
type buildSpaceInput struct {
	Name       string    `json:"name"`
	Dimensions int       `json:"dimensions"`
	Origin     []float64 `json:"origin"`
	Scale      []float64 `json:"scale"`
	Lo         []float64 `json:"lo"`
	Hi         []float64 `json:"hi"`
	GridBits   uint      `json:"grid_bits"`
}

// buildObjectInput is one (position, value) tuple, position expressed in
// the space's own continuous units.
type buildObjectInput struct {
	Position []float64 `json:"position"`
	Value    float64   `json:"value"`
}

type buildFile struct {
	Space   buildSpaceInput     `json:"space"`
	Objects []buildObjectInput  `json:"objects"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(buildInputPath)
	if err != nil {
		return fmt.Errorf("build: read %s: %w", buildInputPath, err)
	}

	var input buildFile
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("build: parse %s: %w", buildInputPath, err)
	}

	space, err := geom.NewSpace(input.Space.Name, input.Space.Dimensions, input.Space.Origin, input.Space.Scale, input.Space.Lo, input.Space.Hi, input.Space.GridBits)
	if err != nil {
		return fmt.Errorf("build: space: %w", err)
	}

	objects := make([]geom.SpaceSetObject, len(input.Objects))
	for i, o := range input.Objects {
		pos, err := space.Encode(o.Position)
		if err != nil {
			return fmt.Errorf("build: object %d: %w", i, err)
		}
		objects[i] = geom.SpaceSetObject{Position: pos, Value: geom.NewCoordinateFromFloat(o.Value)}
	}

	scales, err := parseScales(buildScales, input.Space.Dimensions)
	if err != nil {
		return err
	}

	var maxElements *int
	if len(scales) == 0 {
		m := buildMaxElems
		if m == 0 {
			m = cfg.DefaultMaxElements
		}
		maxElements = &m
	}

	done := logger.Time("build database index")
	db, err := spacedb.New(space, objects, scales, maxElements, spacedb.WithCellBits(cfg.CellBits), spacedb.WithLogger(logger))
	done()
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	cat := spacedb.NewCatalog()
	cat.AddSpace(space)
	cat.AddSpaceDB(space.Name(), db)

	image, err := codec.Encode(cat)
	if err != nil {
		return fmt.Errorf("build: encode: %w", err)
	}

	if err := os.WriteFile(buildOutputPath, image, 0o644); err != nil {
		return fmt.Errorf("build: write %s: %w", buildOutputPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "built %s: %d objects, %d resolution levels\n", buildOutputPath, len(objects), len(db.Resolutions()))
	return nil
}

// parseScales turns repeated "--scale 4,4,4" flags into the [][]uint32 New
// expects, validating each vector has dimensions components.
func parseScales(raw []string, dimensions int) ([][]uint32, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	scales := make([][]uint32, len(raw))
	for i, s := range raw {
		parts := strings.Split(s, ",")
		if len(parts) != dimensions {
			return nil, fmt.Errorf("build: --scale %q has %d components, expected %d", s, len(parts), dimensions)
		}
		vec := make([]uint32, len(parts))
		for k, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("build: --scale %q: %w", s, err)
			}
			vec[k] = uint32(v)
		}
		scales[i] = vec
	}
	return scales, nil
}
