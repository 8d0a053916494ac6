package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
)

var (
	jurisdictionFile string
	buffer           float64
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "boundaryctl",
		Short:         "Inspect and validate jurisdiction boundaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&jurisdictionFile, "file", "f", "", "Jurisdiction YAML file (default: built-in Pulong Buhangin)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the jurisdiction can be enforced by the map",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}

	checkCmd := &cobra.Command{
		Use:   "check <lat> <lng>",
		Short: "Report whether a point lies inside the boundary",
		Args:  cobra.ExactArgs(2),
		RunE:  runCheck,
	}

	maskCmd := &cobra.Command{
		Use:   "mask",
		Short: "Print the mask and outline layers as a GeoJSON FeatureCollection",
		Args:  cobra.NoArgs,
		RunE:  runMask,
	}

	boundsCmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the viewport limits derived from the jurisdiction bounds",
		Args:  cobra.NoArgs,
		RunE:  runBounds,
	}
	boundsCmd.Flags().Float64VarP(&buffer, "buffer", "b", mapview.DefaultViewportConstraint().Buffer, "Buffer in degrees around the bounds")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the jurisdiction as YAML, e.g. to start a new boundary file",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	root.AddCommand(validateCmd, checkCmd, maskCmd, boundsCmd, exportCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadJurisdiction() (domain.Jurisdiction, error) {
	return config.LoadJurisdiction(jurisdictionFile)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	j, err := loadJurisdiction()
	if err != nil {
		return err
	}
	if err := config.ValidateJurisdiction(j); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d vertices, closed=%t)\n", j.Label(), len(j.Boundary), j.Boundary.IsClosed())
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("lng: %w", err)
	}
	j, err := loadJurisdiction()
	if err != nil {
		return err
	}

	loc := domain.Location{Lat: lat, Lng: lng}
	verdict := "outside"
	if geospatial.Contains(j.Boundary, loc) {
		verdict = "inside"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%.0f m from center)\n", loc, verdict, j.Name, geospatial.Distance(j.Center, loc))
	return nil
}

func runMask(cmd *cobra.Command, _ []string) error {
	j, err := loadJurisdiction()
	if err != nil {
		return err
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(mapview.BuildMask(j.Boundary))
	fc.Append(mapview.BuildOutline(j.Boundary))
	return writeJSON(cmd.OutOrStdout(), fc)
}

func runBounds(cmd *cobra.Command, _ []string) error {
	j, err := loadJurisdiction()
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]domain.BoundingBox{
		"bounds":     j.Bounds,
		"max_bounds": mapview.MaxBounds(j.Bounds, buffer),
	})
}

func runExport(cmd *cobra.Command, _ []string) error {
	j, err := loadJurisdiction()
	if err != nil {
		return err
	}
	out, err := config.MarshalJurisdiction(j)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
