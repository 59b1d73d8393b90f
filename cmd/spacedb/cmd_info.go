package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoDBPath string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print summary information about a .sdb binary image",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&infoDBPath, "db", "", "path to a .sdb binary image (required)")
	_ = infoCmd.MarkFlagRequired("db")
}

func runInfo(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(infoDBPath)
	if err != nil {
		return err
	}

	for _, name := range cat.SpaceNames() {
		space, err := cat.Space(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "space %q: dimensions=%d grid_bits=%d volume=%v\n",
			name, space.Dimensions(), space.GridBits(), space.Volume())

		db, err := cat.SpaceDB(name)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  (no index built)\n")
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  values=%d empty=%v resolutions=%d\n", len(db.Values()), db.IsEmpty(), len(db.Resolutions()))
		for i, level := range db.Resolutions() {
			fmt.Fprintf(cmd.OutOrStdout(), "    [%d] threshold=%v scale=%v shift=%d elements=%d\n",
				i, level.Threshold(), level.Scale(), level.Shift(), level.Index().Len())
		}
	}
	return nil
}
