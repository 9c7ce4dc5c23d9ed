package cmd

import (
	"context"
	"fmt"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the chart of accounts",
}

// account create
var (
	acctCreateCode     string
	acctCreateName     string
	acctCreatePostable bool
	acctCreateCurrency string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer).WithActor(flagActor)

		acct := &ledger.Account{
			Code:     acctCreateCode,
			Name:     acctCreateName,
			Postable: acctCreatePostable,
			Currency: acctCreateCurrency,
		}

		created, err := c.CreateAccount(context.Background(), acct)
		if err != nil {
			return err
		}

		fmt.Printf("Account created: %s (%s) %s level %d\n",
			created.Code, created.Name, created.Kind, created.Level)
		return nil
	},
}

// account list
var (
	acctListKind     string
	acctListPostable bool
)

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		var postable *bool
		if cmd.Flags().Changed("postable") {
			postable = &acctListPostable
		}

		accounts, err := c.ListAccounts(context.Background(), acctListKind, postable)
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}

		fmt.Printf("%-10s %-32s %-10s %-9s %s\n", "CODE", "NAME", "KIND", "POSTABLE", "CURRENCY")
		fmt.Printf("%-10s %-32s %-10s %-9s %s\n", "----", "----", "----", "--------", "--------")
		for _, a := range accounts {
			name := a.Name
			if len(name) > 30 {
				name = name[:30] + ".."
			}
			fmt.Printf("%-10s %-32s %-10s %-9v %s\n", a.Code, name, a.Kind, a.Postable, a.Currency)
		}
		return nil
	},
}

// account get
var accountGetCmd = &cobra.Command{
	Use:   "get [code]",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		acct, err := c.GetAccount(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Code:     %s\n", acct.Code)
		fmt.Printf("Name:     %s\n", acct.Name)
		fmt.Printf("Kind:     %s\n", acct.Kind)
		fmt.Printf("Level:    %d\n", acct.Level)
		fmt.Printf("Parent:   %s\n", acct.ParentCode)
		fmt.Printf("Postable: %v\n", acct.Postable)
		fmt.Printf("Currency: %s\n", acct.Currency)
		fmt.Printf("Created:  %s\n", acct.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// account balance
var accountBalanceCmd = &cobra.Command{
	Use:   "balance [code]",
	Short: "Get account balance per currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		bal, err := c.GetAccountBalance(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Account: %s\n", bal.AccountCode)
		if len(bal.Balances) == 0 {
			fmt.Println("No posted lines.")
			return nil
		}
		for _, b := range bal.Balances {
			fmt.Printf("  %s %s\n", ledger.FormatAmount(b.Balance, b.Currency), b.Currency)
		}
		return nil
	},
}

// account chart
var accountChartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show the predefined chart of accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		chart, err := c.GetChart(context.Background())
		if err != nil {
			return err
		}

		for _, e := range chart {
			fmt.Printf("%-10s %s\n", e.Code, e.Name)
		}
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&acctCreateCode, "code", "", "Dotted account code (e.g. 1.3.4)")
	accountCreateCmd.Flags().StringVar(&acctCreateName, "name", "", "Account name")
	accountCreateCmd.Flags().BoolVar(&acctCreatePostable, "postable", false, "Accept journal lines")
	accountCreateCmd.Flags().StringVar(&acctCreateCurrency, "currency", "", "Restrict to a currency (ISO 4217)")
	accountCreateCmd.MarkFlagRequired("code")
	accountCreateCmd.MarkFlagRequired("name")

	accountListCmd.Flags().StringVar(&acctListKind, "kind", "", "Filter by kind (asset, liability, equity, income, expense)")
	accountListCmd.Flags().BoolVar(&acctListPostable, "postable", false, "Filter by postability")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountBalanceCmd)
	accountCmd.AddCommand(accountChartCmd)

	rootCmd.AddCommand(accountCmd)
}
