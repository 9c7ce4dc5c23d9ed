package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
	PartyBoth     PartyKind = "both"
)

// ThirdParty is a customer or supplier with running balances. The balances are
// adjusted only inside posting transactions; at any point they must equal the
// replay of all posted lines referencing the party.
type ThirdParty struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Kind              PartyKind       `json:"kind"`
	ReceivableBalance decimal.Decimal `json:"receivable_balance"`
	PayableBalance    decimal.Decimal `json:"payable_balance"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (p *ThirdParty) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("third party id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("third party name is required")
	}
	switch p.Kind {
	case PartyCustomer, PartySupplier, PartyBoth:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPartyKind, p.Kind)
	}
}

// BalanceEffect describes how a single posted line moves a party's balances.
type BalanceEffect struct {
	Receivable decimal.Decimal
	Payable    decimal.Decimal
}

// EffectOf computes a line's balance effect from the account it posts to.
// Lines on asset accounts move the receivable (debits increase it); lines on
// liability accounts move the payable (credits increase it). Other kinds have
// no party effect.
func EffectOf(line LedgerLine, accountKind Kind) BalanceEffect {
	switch accountKind {
	case KindAsset:
		return BalanceEffect{Receivable: line.Signed()}
	case KindLiability:
		return BalanceEffect{Payable: line.Signed().Neg()}
	default:
		return BalanceEffect{}
	}
}

// PartyTotals aggregates receivable and payable balances across parties.
type PartyTotals struct {
	TotalReceivable decimal.Decimal `json:"total_receivable"`
	TotalPayable    decimal.Decimal `json:"total_payable"`
}

// ComputePartyTotals sums the stored balances. Pure aggregation, O(n).
func ComputePartyTotals(parties []ThirdParty) PartyTotals {
	var t PartyTotals
	for _, p := range parties {
		t.TotalReceivable = t.TotalReceivable.Add(p.ReceivableBalance)
		t.TotalPayable = t.TotalPayable.Add(p.PayableBalance)
	}
	return t
}
