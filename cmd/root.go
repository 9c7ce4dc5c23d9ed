package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagDB     string
	flagActor  string
)

var rootCmd = &cobra.Command{
	Use:   "campolibro",
	Short: "Field book and double-entry ledger for farm operations",
	Long:  "A farm management ledger backed by SQLite: double-entry journal over a hierarchical chart of accounts, third-party balances, and versioned plot geometries.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "campolibro.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "", "Acting user recorded on writes")
}

func Execute() error {
	return rootCmd.Execute()
}
