package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage journal entries",
}

// entry post
var (
	entryDescription string
	entryRequestID   string
	entryLines       []string // format: "account:direction:amount:currency[:party[:cost_center]]"
)

var entryPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a balanced journal entry",
	Long:  `Post a journal entry. Each --line is formatted as "account:direction:amount:currency[:party[:cost_center]]" (e.g. "1.3.2:debit:5000:ARS" or "2.1.1:credit:5000:ARS:agro-sur")`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer).WithActor(flagActor)

		lines := make([]ledger.LedgerLine, 0, len(entryLines))
		for _, raw := range entryLines {
			line, err := parseLine(raw)
			if err != nil {
				return err
			}
			lines = append(lines, line)
		}

		created, err := c.PostEntry(context.Background(), entryRequestID, entryDescription, lines)
		if err != nil {
			return err
		}

		fmt.Printf("Entry posted: %s\n", created.ID)
		printEntry(created)
		return nil
	},
}

func parseLine(raw string) (ledger.LedgerLine, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 4 || len(parts) > 6 {
		return ledger.LedgerLine{}, fmt.Errorf("invalid line format %q, expected account:direction:amount:currency[:party[:cost_center]]", raw)
	}
	amount, err := decimal.NewFromString(parts[2])
	if err != nil {
		return ledger.LedgerLine{}, fmt.Errorf("invalid amount %q in line %q: %w", parts[2], raw, err)
	}
	line := ledger.LedgerLine{
		AccountCode: parts[0],
		Direction:   ledger.Direction(parts[1]),
		Amount:      amount,
		Currency:    parts[3],
	}
	if len(parts) > 4 {
		line.ThirdPartyID = parts[4]
	}
	if len(parts) > 5 {
		line.CostCenter = parts[5]
	}
	return line, nil
}

func printEntry(e *ledger.JournalEntry) {
	fmt.Printf("Description: %s\n", e.Description)
	fmt.Printf("Status:      %s\n", e.Status)
	fmt.Printf("Lines:\n")
	fmt.Printf("  %-6s %-10s %14s %-8s %s\n", "DIR", "ACCOUNT", "AMOUNT", "CCY", "PARTY")
	for _, l := range e.Lines {
		fmt.Printf("  %-6s %-10s %14s %-8s %s\n",
			strings.ToUpper(string(l.Direction)),
			l.AccountCode,
			ledger.FormatAmount(l.Amount, l.Currency),
			l.Currency,
			l.ThirdPartyID,
		)
	}
}

// entry list
var (
	entryListAccount string
	entryListParty   string
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		entries, err := c.ListEntries(context.Background(), entryListAccount, entryListParty)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		fmt.Printf("%-38s %-17s %-8s %-6s %s\n", "ID", "DATE", "STATUS", "LINES", "DESCRIPTION")
		fmt.Printf("%-38s %-17s %-8s %-6s %s\n", "----", "----", "------", "-----", "-----------")
		for _, e := range entries {
			desc := e.Description
			if len(desc) > 40 {
				desc = desc[:38] + ".."
			}
			fmt.Printf("%-38s %-17s %-8s %-6d %s\n",
				e.ID,
				e.Date.Format("2006-01-02 15:04"),
				e.Status,
				len(e.Lines),
				desc,
			)
		}
		return nil
	},
}

// entry get
var entryGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get entry details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		entry, err := c.GetEntry(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", entry.ID)
		fmt.Printf("Date:        %s\n", entry.Date.Format("2006-01-02 15:04:05"))
		printEntry(entry)
		return nil
	},
}

// entry void
var entryVoidCmd = &cobra.Command{
	Use:   "void [id]",
	Short: "Void a posted entry, reversing its party balance effects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer).WithActor(flagActor)

		entry, err := c.VoidEntry(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Entry voided: %s\n", entry.ID)
		return nil
	},
}

func init() {
	entryPostCmd.Flags().StringVar(&entryDescription, "description", "", "Entry description")
	entryPostCmd.Flags().StringVar(&entryRequestID, "request-id", "", "Idempotency key (replays return the original entry)")
	entryPostCmd.Flags().StringSliceVar(&entryLines, "line", nil, "Line in format account:direction:amount:currency[:party[:cost_center]] (can be repeated)")
	entryPostCmd.MarkFlagRequired("description")
	entryPostCmd.MarkFlagRequired("line")

	entryListCmd.Flags().StringVar(&entryListAccount, "account", "", "Filter by account code")
	entryListCmd.Flags().StringVar(&entryListParty, "party", "", "Filter by third party")

	entryCmd.AddCommand(entryPostCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryGetCmd)
	entryCmd.AddCommand(entryVoidCmd)

	rootCmd.AddCommand(entryCmd)
}
