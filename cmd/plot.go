package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/spf13/cobra"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Manage plots and their boundary versions",
}

func readGeometry(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geometry file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("geometry file %s is not valid JSON", path)
	}
	return data, nil
}

// plot create
var (
	plotCreateField    string
	plotCreateName     string
	plotCreateCode     string
	plotCreateGeometry string
)

var plotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a plot from a GeoJSON polygon file",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer).WithActor(flagActor)

		geom, err := readGeometry(plotCreateGeometry)
		if err != nil {
			return err
		}

		created, err := c.CreatePlot(context.Background(), plotCreateField, plotCreateName, plotCreateCode, geom)
		if err != nil {
			return err
		}

		fmt.Printf("Plot created: %s (%s)\n", created.ID, created.Name)
		fmt.Printf("Area: %.2f ha\n", created.AreaHectares)
		return nil
	},
}

// plot list
var plotListField string

var plotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plots",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		plots, err := c.ListPlots(context.Background(), plotListField)
		if err != nil {
			return err
		}

		if len(plots) == 0 {
			fmt.Println("No plots found.")
			return nil
		}

		fmt.Printf("%-38s %-12s %-24s %12s\n", "ID", "CODE", "NAME", "AREA (HA)")
		fmt.Printf("%-38s %-12s %-24s %12s\n", "----", "----", "----", "---------")
		for _, p := range plots {
			fmt.Printf("%-38s %-12s %-24s %12.2f\n", p.ID, p.Code, p.Name, p.AreaHectares)
		}
		return nil
	},
}

// plot get
var plotGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get plot details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		plot, err := c.GetPlot(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:      %s\n", plot.ID)
		fmt.Printf("Field:   %s\n", plot.FieldID)
		fmt.Printf("Name:    %s\n", plot.Name)
		fmt.Printf("Code:    %s\n", plot.Code)
		fmt.Printf("Area:    %.2f ha\n", plot.AreaHectares)
		fmt.Printf("Created: %s\n", plot.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// plot versions
var plotVersionsCmd = &cobra.Command{
	Use:   "versions [id]",
	Short: "List boundary versions of a plot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		versions, err := c.ListGeometryVersions(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%-8s %12s %-20s %-16s %s\n", "VERSION", "AREA (HA)", "CHANGED", "BY", "REASON")
		fmt.Printf("%-8s %12s %-20s %-16s %s\n", "-------", "---------", "-------", "--", "------")
		for _, v := range versions {
			fmt.Printf("%-8d %12.2f %-20s %-16s %s\n",
				v.Version, v.AreaHectares,
				v.ChangedAt.Format("2006-01-02 15:04"),
				v.ChangedBy, v.Reason)
		}
		return nil
	},
}

// plot revise
var (
	plotReviseGeometry string
	plotReviseReason   string
)

var plotReviseCmd = &cobra.Command{
	Use:   "revise [id]",
	Short: "Append a new boundary version from a GeoJSON polygon file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer).WithActor(flagActor)

		geom, err := readGeometry(plotReviseGeometry)
		if err != nil {
			return err
		}

		v, err := c.AppendGeometryVersion(context.Background(), args[0], geom, plotReviseReason)
		if err != nil {
			return err
		}

		fmt.Printf("Version %d recorded: %.2f ha\n", v.Version, v.AreaHectares)
		return nil
	},
}

// plot compare
var (
	plotCompareFrom int
	plotCompareTo   int
)

var plotCompareCmd = &cobra.Command{
	Use:   "compare [id]",
	Short: "Compare two boundary versions of a plot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		cmp, err := c.CompareVersions(context.Background(), args[0], plotCompareFrom, plotCompareTo)
		if err != nil {
			return err
		}

		fmt.Printf("Version %d: %.2f ha\n", cmp.FromVersion, cmp.AreaFromHa)
		fmt.Printf("Version %d: %.2f ha\n", cmp.ToVersion, cmp.AreaToHa)
		fmt.Printf("Delta:     %+.2f ha (%+.2f%%)\n", cmp.DeltaHa, cmp.DeltaPercent)
		return nil
	},
}

func init() {
	plotCreateCmd.Flags().StringVar(&plotCreateField, "field", "", "Field ID the plot belongs to")
	plotCreateCmd.Flags().StringVar(&plotCreateName, "name", "", "Plot name")
	plotCreateCmd.Flags().StringVar(&plotCreateCode, "plot-code", "", "Unique plot code")
	plotCreateCmd.Flags().StringVar(&plotCreateGeometry, "geometry", "", "Path to GeoJSON polygon file")
	plotCreateCmd.MarkFlagRequired("name")
	plotCreateCmd.MarkFlagRequired("plot-code")
	plotCreateCmd.MarkFlagRequired("geometry")

	plotListCmd.Flags().StringVar(&plotListField, "field", "", "Filter by field ID")

	plotReviseCmd.Flags().StringVar(&plotReviseGeometry, "geometry", "", "Path to GeoJSON polygon file")
	plotReviseCmd.Flags().StringVar(&plotReviseReason, "reason", "", "Why the boundary changed")
	plotReviseCmd.MarkFlagRequired("geometry")

	plotCompareCmd.Flags().IntVar(&plotCompareFrom, "from", 0, "Baseline version")
	plotCompareCmd.Flags().IntVar(&plotCompareTo, "to", 0, "Target version")
	plotCompareCmd.MarkFlagRequired("from")
	plotCompareCmd.MarkFlagRequired("to")

	plotCmd.AddCommand(plotCreateCmd)
	plotCmd.AddCommand(plotListCmd)
	plotCmd.AddCommand(plotGetCmd)
	plotCmd.AddCommand(plotVersionsCmd)
	plotCmd.AddCommand(plotReviseCmd)
	plotCmd.AddCommand(plotCompareCmd)

	rootCmd.AddCommand(plotCmd)
}
