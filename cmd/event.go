package cmd

import (
	"context"
	"fmt"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Post business events as journal entries",
}

var (
	evRequestID    string
	evAmount       string
	evCurrency     string
	evCostCenter   string
	evInput        string
	evInputAccount string
	evCrop         string
	evParty        string
	evCashAccount  string
)

func evAmountDecimal() (decimal.Decimal, error) {
	amt, err := decimal.NewFromString(evAmount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", evAmount, err)
	}
	return amt, nil
}

func postEvent(kind string, event any) error {
	c := client.New(flagServer).WithActor(flagActor)
	entry, err := c.PostEvent(context.Background(), kind, evRequestID, event)
	if err != nil {
		return err
	}
	fmt.Printf("Entry posted: %s\n", entry.ID)
	printEntry(entry)
	return nil
}

var eventPurchaseCmd = &cobra.Command{
	Use:   "purchase",
	Short: "Record an input purchase from a supplier",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := evAmountDecimal()
		if err != nil {
			return err
		}
		return postEvent("purchase", ledger.InputPurchase{
			InputAccount: evInputAccount,
			SupplierID:   evParty,
			Input:        evInput,
			Amount:       amt,
			Currency:     evCurrency,
			CostCenter:   evCostCenter,
		})
	},
}

var eventApplicationCmd = &cobra.Command{
	Use:   "application",
	Short: "Record applying a stored input to a crop",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := evAmountDecimal()
		if err != nil {
			return err
		}
		return postEvent("application", ledger.InputApplication{
			InputAccount: evInputAccount,
			Input:        evInput,
			Crop:         evCrop,
			Amount:       amt,
			Currency:     evCurrency,
			CostCenter:   evCostCenter,
		})
	},
}

var eventHarvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Record a harvest into grain stock",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := evAmountDecimal()
		if err != nil {
			return err
		}
		return postEvent("harvest", ledger.Harvest{
			Crop:       evCrop,
			Amount:     amt,
			Currency:   evCurrency,
			CostCenter: evCostCenter,
		})
	},
}

var eventConsignmentCmd = &cobra.Command{
	Use:   "consignment",
	Short: "Record a consignment delivery of grain",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := evAmountDecimal()
		if err != nil {
			return err
		}
		return postEvent("consignment", ledger.ConsignmentDelivery{
			Crop:       evCrop,
			Buyer:      evParty,
			Amount:     amt,
			Currency:   evCurrency,
			CostCenter: evCostCenter,
		})
	},
}

var eventSaleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Record a direct grain sale on account",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := evAmountDecimal()
		if err != nil {
			return err
		}
		return postEvent("sale", ledger.DirectSale{
			Crop:       evCrop,
			BuyerID:    evParty,
			Amount:     amt,
			Currency:   evCurrency,
			CostCenter: evCostCenter,
		})
	},
}

var eventCollectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Record a customer collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := evAmountDecimal()
		if err != nil {
			return err
		}
		return postEvent("collection", ledger.Collection{
			CashAccount: evCashAccount,
			CustomerID:  evParty,
			Amount:      amt,
			Currency:    evCurrency,
		})
	},
}

var eventPaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Record a supplier payment",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := evAmountDecimal()
		if err != nil {
			return err
		}
		return postEvent("payment", ledger.SupplierPayment{
			CashAccount: evCashAccount,
			SupplierID:  evParty,
			Amount:      amt,
			Currency:    evCurrency,
		})
	},
}

func init() {
	eventCmd.PersistentFlags().StringVar(&evRequestID, "request-id", "", "Idempotency key")
	eventCmd.PersistentFlags().StringVar(&evAmount, "amount", "", "Amount (decimal)")
	eventCmd.PersistentFlags().StringVar(&evCurrency, "currency", ledger.BaseCurrency, "Currency (ISO 4217)")
	eventCmd.PersistentFlags().StringVar(&evCostCenter, "cost-center", "", "Cost center (field, plot, campaign)")

	eventPurchaseCmd.Flags().StringVar(&evInputAccount, "input-account", ledger.AccountAgroInventory, "Inventory account for the input")
	eventPurchaseCmd.Flags().StringVar(&evInput, "input", "", "Input description")
	eventPurchaseCmd.Flags().StringVar(&evParty, "supplier", "", "Supplier ID")
	eventPurchaseCmd.MarkFlagRequired("input")
	eventPurchaseCmd.MarkFlagRequired("supplier")

	eventApplicationCmd.Flags().StringVar(&evInputAccount, "input-account", ledger.AccountAgroInventory, "Inventory account for the input")
	eventApplicationCmd.Flags().StringVar(&evInput, "input", "", "Input description")
	eventApplicationCmd.Flags().StringVar(&evCrop, "crop", "", "Crop")
	eventApplicationCmd.MarkFlagRequired("input")
	eventApplicationCmd.MarkFlagRequired("crop")

	eventHarvestCmd.Flags().StringVar(&evCrop, "crop", "", "Crop")
	eventHarvestCmd.MarkFlagRequired("crop")

	eventConsignmentCmd.Flags().StringVar(&evCrop, "crop", "", "Crop")
	eventConsignmentCmd.Flags().StringVar(&evParty, "buyer", "", "Buyer name")
	eventConsignmentCmd.MarkFlagRequired("crop")
	eventConsignmentCmd.MarkFlagRequired("buyer")

	eventSaleCmd.Flags().StringVar(&evCrop, "crop", "", "Crop")
	eventSaleCmd.Flags().StringVar(&evParty, "buyer", "", "Buyer ID")
	eventSaleCmd.MarkFlagRequired("crop")
	eventSaleCmd.MarkFlagRequired("buyer")

	eventCollectionCmd.Flags().StringVar(&evCashAccount, "cash-account", "", "Cash or bank account (defaults to cash)")
	eventCollectionCmd.Flags().StringVar(&evParty, "customer", "", "Customer ID")
	eventCollectionCmd.MarkFlagRequired("customer")

	eventPaymentCmd.Flags().StringVar(&evCashAccount, "cash-account", "", "Cash or bank account (defaults to cash)")
	eventPaymentCmd.Flags().StringVar(&evParty, "supplier", "", "Supplier ID")
	eventPaymentCmd.MarkFlagRequired("supplier")

	for _, sub := range []*cobra.Command{
		eventPurchaseCmd, eventApplicationCmd, eventHarvestCmd,
		eventConsignmentCmd, eventSaleCmd, eventCollectionCmd, eventPaymentCmd,
	} {
		eventCmd.AddCommand(sub)
	}

	rootCmd.AddCommand(eventCmd)
}
