package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		code   string
		level  int
		parent string
	}{
		{"1", 1, ""},
		{"1.3", 2, "1"},
		{"1.3.2", 3, "1.3"},
		{"2.1.1", 3, "2.1"},
		{"5.1.1.4", 4, "5.1.1"},
	}
	for _, tt := range tests {
		level, parent, err := ParseCode(tt.code)
		require.NoError(t, err, tt.code)
		assert.Equal(t, tt.level, level, tt.code)
		assert.Equal(t, tt.parent, parent, tt.code)
	}
}

func TestParseCode_Invalid(t *testing.T) {
	for _, code := range []string{"", "1..3", "1.a", "x", ".1", "1."} {
		_, _, err := ParseCode(code)
		assert.ErrorIs(t, err, ErrInvalidAccountCode, code)
	}
}

func TestKindForCode(t *testing.T) {
	tests := []struct {
		code string
		kind Kind
	}{
		{"1.1.1", KindAsset},
		{"2.1.1", KindLiability},
		{"3.1.1", KindEquity},
		{"4.1.1", KindIncome},
		{"5.1.1", KindExpense},
	}
	for _, tt := range tests {
		kind, err := KindForCode(tt.code)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, kind)
	}

	_, err := KindForCode("6.1.1")
	assert.ErrorIs(t, err, ErrInvalidAccountCode)
}

func TestAccountValidate_FillsDerivedFields(t *testing.T) {
	a := &Account{Code: "1.3.4", Name: "Fuel inventory", Postable: true}
	require.NoError(t, a.Validate())
	assert.Equal(t, KindAsset, a.Kind)
	assert.Equal(t, 3, a.Level)
	assert.Equal(t, "1.3", a.ParentCode)
}

func TestAccountValidate_KindMismatch(t *testing.T) {
	a := &Account{Code: "1.3.4", Name: "Fuel", Kind: KindExpense, Postable: true}
	require.ErrorIs(t, a.Validate(), ErrInvalidKind)
}

func TestAccountValidate_PostableOnlyAtLeafLevel(t *testing.T) {
	a := &Account{Code: "1.3", Name: "Input inventory", Postable: true}
	require.ErrorIs(t, a.Validate(), ErrInvalidAccountCode)

	a = &Account{Code: "1.3", Name: "Input inventory"}
	assert.NoError(t, a.Validate())
}

func TestNormalBalance(t *testing.T) {
	assert.Equal(t, Debit, NormalBalance(KindAsset))
	assert.Equal(t, Debit, NormalBalance(KindExpense))
	assert.Equal(t, Credit, NormalBalance(KindLiability))
	assert.Equal(t, Credit, NormalBalance(KindEquity))
	assert.Equal(t, Credit, NormalBalance(KindIncome))
}

func TestPredefinedChart_ParentsBeforeChildren(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range PredefinedChart {
		level, parent, err := ParseCode(e.Code)
		require.NoError(t, err, e.Code)
		if level > 1 {
			assert.True(t, seen[parent], "parent %s of %s must be seeded first", parent, e.Code)
		}
		seen[e.Code] = true

		kind, err := KindForCode(e.Code)
		require.NoError(t, err)
		assert.Equal(t, e.Kind, kind, e.Code)
	}
}

func TestPredefinedChart_EventAccountsPresent(t *testing.T) {
	codes := map[string]bool{}
	for _, e := range PredefinedChart {
		codes[e.Code] = true
	}
	for _, c := range []string{
		AccountCash, AccountBank, AccountReceivables,
		AccountSeedInventory, AccountFertInventory, AccountAgroInventory,
		AccountCropsInProgress, AccountGrainStock, AccountGrainConsigned,
		AccountPayables, AccountCapital, AccountGrainSales, AccountProductionCosts,
	} {
		assert.True(t, codes[c], "chart is missing %s", c)
	}
}
