package cmd

import (
	"context"
	"fmt"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/spf13/cobra"
)

var partyCmd = &cobra.Command{
	Use:   "party",
	Short: "Manage third parties (customers and suppliers)",
}

// party create
var (
	partyCreateID   string
	partyCreateName string
	partyCreateKind string
)

var partyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a third party",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer).WithActor(flagActor)

		party := &ledger.ThirdParty{
			ID:   partyCreateID,
			Name: partyCreateName,
			Kind: ledger.PartyKind(partyCreateKind),
		}

		created, err := c.CreateParty(context.Background(), party)
		if err != nil {
			return err
		}

		fmt.Printf("Party created: %s (%s) %s\n", created.ID, created.Name, created.Kind)
		return nil
	},
}

// party list
var partyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List third parties with balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		parties, err := c.ListParties(context.Background())
		if err != nil {
			return err
		}

		if len(parties) == 0 {
			fmt.Println("No parties found.")
			return nil
		}

		fmt.Printf("%-16s %-28s %-10s %14s %14s\n", "ID", "NAME", "KIND", "RECEIVABLE", "PAYABLE")
		fmt.Printf("%-16s %-28s %-10s %14s %14s\n", "----", "----", "----", "----------", "-------")
		for _, p := range parties {
			name := p.Name
			if len(name) > 26 {
				name = name[:26] + ".."
			}
			fmt.Printf("%-16s %-28s %-10s %14s %14s\n",
				p.ID, name, p.Kind,
				p.ReceivableBalance.StringFixed(2),
				p.PayableBalance.StringFixed(2),
			)
		}
		return nil
	},
}

// party get
var partyGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get party details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		party, err := c.GetParty(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:         %s\n", party.ID)
		fmt.Printf("Name:       %s\n", party.Name)
		fmt.Printf("Kind:       %s\n", party.Kind)
		fmt.Printf("Receivable: %s\n", party.ReceivableBalance.StringFixed(2))
		fmt.Printf("Payable:    %s\n", party.PayableBalance.StringFixed(2))
		return nil
	},
}

// party totals
var partyTotalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Aggregate receivable and payable totals across parties",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		totals, err := c.PartyTotals(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Total receivable: %s\n", totals.TotalReceivable.StringFixed(2))
		fmt.Printf("Total payable:    %s\n", totals.TotalPayable.StringFixed(2))
		return nil
	},
}

// party replay
var partyReplayCmd = &cobra.Command{
	Use:   "replay [id]",
	Short: "Re-derive a party's balances from the journal and check for drift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		replay, err := c.ReplayParty(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Party:      %s\n", replay.PartyID)
		fmt.Printf("Receivable: stored %s, replayed %s\n",
			replay.StoredReceivable.StringFixed(2), replay.ReplayedReceivable.StringFixed(2))
		fmt.Printf("Payable:    stored %s, replayed %s\n",
			replay.StoredPayable.StringFixed(2), replay.ReplayedPayable.StringFixed(2))
		if replay.InSync {
			fmt.Println("In sync.")
		} else {
			fmt.Println("DRIFT DETECTED: stored balances do not match the journal.")
		}
		return nil
	},
}

func init() {
	partyCreateCmd.Flags().StringVar(&partyCreateID, "id", "", "Party ID (e.g. agro-sur)")
	partyCreateCmd.Flags().StringVar(&partyCreateName, "name", "", "Party name")
	partyCreateCmd.Flags().StringVar(&partyCreateKind, "kind", "both", "Party kind (customer, supplier, both)")
	partyCreateCmd.MarkFlagRequired("id")
	partyCreateCmd.MarkFlagRequired("name")

	partyCmd.AddCommand(partyCreateCmd)
	partyCmd.AddCommand(partyListCmd)
	partyCmd.AddCommand(partyGetCmd)
	partyCmd.AddCommand(partyTotalsCmd)
	partyCmd.AddCommand(partyReplayCmd)

	rootCmd.AddCommand(partyCmd)
}
