package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThirdPartyValidate(t *testing.T) {
	p := &ThirdParty{ID: "agro-sur", Name: "Agro Sur SA", Kind: PartySupplier}
	require.NoError(t, p.Validate())

	p.Kind = "vendor"
	require.ErrorIs(t, p.Validate(), ErrInvalidPartyKind)

	require.Error(t, (&ThirdParty{Name: "x", Kind: PartyBoth}).Validate())
	require.Error(t, (&ThirdParty{ID: "x", Kind: PartyBoth}).Validate())
}

func TestEffectOf(t *testing.T) {
	recv := line(AccountReceivables, Debit, "100", "ARS")
	eff := EffectOf(recv, KindAsset)
	assert.True(t, eff.Receivable.Equal(dec("100")))
	assert.True(t, eff.Payable.IsZero())

	collect := line(AccountReceivables, Credit, "40", "ARS")
	eff = EffectOf(collect, KindAsset)
	assert.True(t, eff.Receivable.Equal(dec("-40")))

	owe := line(AccountPayables, Credit, "5000", "ARS")
	eff = EffectOf(owe, KindLiability)
	assert.True(t, eff.Payable.Equal(dec("5000")))
	assert.True(t, eff.Receivable.IsZero())

	pay := line(AccountPayables, Debit, "2000", "ARS")
	eff = EffectOf(pay, KindLiability)
	assert.True(t, eff.Payable.Equal(dec("-2000")))
}

func TestEffectOf_NonBalanceKinds(t *testing.T) {
	for _, kind := range []Kind{KindEquity, KindIncome, KindExpense} {
		eff := EffectOf(line("4.1.1", Credit, "10", "ARS"), kind)
		assert.True(t, eff.Receivable.IsZero(), kind)
		assert.True(t, eff.Payable.IsZero(), kind)
	}
}

func TestComputePartyTotals(t *testing.T) {
	parties := []ThirdParty{
		{ID: "a", ReceivableBalance: dec("150.25"), PayableBalance: dec("0")},
		{ID: "b", ReceivableBalance: dec("0"), PayableBalance: dec("5000")},
		{ID: "c", ReceivableBalance: dec("49.75"), PayableBalance: dec("1000")},
	}
	totals := ComputePartyTotals(parties)
	assert.True(t, totals.TotalReceivable.Equal(dec("200")))
	assert.True(t, totals.TotalPayable.Equal(dec("6000")))
}

func TestComputePartyTotals_Empty(t *testing.T) {
	totals := ComputePartyTotals(nil)
	assert.True(t, totals.TotalReceivable.IsZero())
	assert.True(t, totals.TotalPayable.IsZero())
}
