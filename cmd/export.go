package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := c.ExportJournal(context.Background(), out); err != nil {
			return err
		}
		if exportOut != "" {
			fmt.Fprintf(os.Stderr, "Journal written to %s\n", exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
