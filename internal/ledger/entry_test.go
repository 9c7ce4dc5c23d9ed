package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(account string, dir Direction, amount, currency string) LedgerLine {
	return LedgerLine{
		AccountCode: account,
		Direction:   dir,
		Amount:      dec(amount),
		Currency:    currency,
	}
}

func balancedEntry(lines ...LedgerLine) *JournalEntry {
	return &JournalEntry{
		ID:          "e-1",
		Description: "test entry",
		Lines:       lines,
	}
}

func TestValidate_Balanced(t *testing.T) {
	e := balancedEntry(
		line(AccountFertInventory, Debit, "5000", "ARS"),
		line(AccountPayables, Credit, "5000", "ARS"),
	)
	assert.NoError(t, e.Validate())
}

func TestValidate_Unbalanced(t *testing.T) {
	e := balancedEntry(
		line(AccountFertInventory, Debit, "5000", "ARS"),
		line(AccountPayables, Credit, "4000", "ARS"),
	)
	err := e.Validate()
	require.ErrorIs(t, err, ErrUnbalancedEntry)
	assert.Contains(t, err.Error(), "1000")
}

func TestValidate_UnbalancedCreditOnly(t *testing.T) {
	e := balancedEntry(line(AccountPayables, Credit, "100", "ARS"))
	require.ErrorIs(t, e.Validate(), ErrUnbalancedEntry)
}

func TestValidate_MultiCurrencyBalancesPerCurrency(t *testing.T) {
	e := balancedEntry(
		line(AccountCash, Debit, "100", "ARS"),
		line(AccountGrainSales, Credit, "100", "ARS"),
		line(AccountBank, Debit, "20.50", "USD"),
		line(AccountGrainSales, Credit, "20.50", "USD"),
	)
	assert.NoError(t, e.Validate())
}

func TestValidate_MultiCurrencyCrossBalanceRejected(t *testing.T) {
	// Same grand total on both sides, but each currency is individually
	// unbalanced.
	e := balancedEntry(
		line(AccountCash, Debit, "100", "ARS"),
		line(AccountGrainSales, Credit, "100", "USD"),
	)
	require.ErrorIs(t, e.Validate(), ErrUnbalancedEntry)
}

func TestValidate_EmptyDescription(t *testing.T) {
	e := &JournalEntry{Lines: []LedgerLine{line(AccountCash, Debit, "1", "ARS")}}
	require.ErrorIs(t, e.Validate(), ErrEmptyDescription)
}

func TestValidate_NoLines(t *testing.T) {
	e := &JournalEntry{Description: "empty"}
	require.ErrorIs(t, e.Validate(), ErrEmptyEntry)
}

func TestValidate_NegativeAmount(t *testing.T) {
	e := balancedEntry(
		line(AccountCash, Debit, "-5", "ARS"),
		line(AccountGrainSales, Credit, "-5", "ARS"),
	)
	require.ErrorIs(t, e.Validate(), ErrNegativeAmount)
}

func TestValidate_BadDirection(t *testing.T) {
	e := balancedEntry(LedgerLine{AccountCode: AccountCash, Direction: "sideways", Amount: dec("1"), Currency: "ARS"})
	require.ErrorIs(t, e.Validate(), ErrInvalidDirection)
}

func TestValidate_UnknownCurrency(t *testing.T) {
	e := balancedEntry(
		line(AccountCash, Debit, "1", "XXX"),
		line(AccountGrainSales, Credit, "1", "XXX"),
	)
	require.ErrorIs(t, e.Validate(), ErrInvalidCurrency)
}

func TestValidate_ExcessPrecision(t *testing.T) {
	e := balancedEntry(
		line(AccountCash, Debit, "1.005", "ARS"),
		line(AccountGrainSales, Credit, "1.005", "ARS"),
	)
	require.ErrorIs(t, e.Validate(), ErrBadPrecision)
}

func TestValidate_ZeroDecimalCurrency(t *testing.T) {
	e := balancedEntry(
		line(AccountCash, Debit, "1500", "PYG"),
		line(AccountGrainSales, Credit, "1500", "PYG"),
	)
	assert.NoError(t, e.Validate())

	e = balancedEntry(
		line(AccountCash, Debit, "1500.50", "PYG"),
		line(AccountGrainSales, Credit, "1500.50", "PYG"),
	)
	require.ErrorIs(t, e.Validate(), ErrBadPrecision)
}

// mapResolver implements AccountResolver over a fixed set of accounts.
type mapResolver map[string]*Account

func (m mapResolver) Resolve(code string) (*Account, error) {
	acct, ok := m[code]
	if !ok {
		return nil, ErrUnknownAccount
	}
	return acct, nil
}

func testResolver() mapResolver {
	return mapResolver{
		AccountCash:       {Code: AccountCash, Name: "Cash", Kind: KindAsset, Postable: true},
		AccountGrainSales: {Code: AccountGrainSales, Name: "Grain sales", Kind: KindIncome, Postable: true},
		"1.3":             {Code: "1.3", Name: "Input inventory", Kind: KindAsset, Postable: false},
		"1.1.9":           {Code: "1.1.9", Name: "USD cash box", Kind: KindAsset, Postable: true, Currency: "USD"},
	}
}

func TestCheckAccounts_OK(t *testing.T) {
	lines := []LedgerLine{
		line(AccountCash, Debit, "10", "ARS"),
		line(AccountGrainSales, Credit, "10", "ARS"),
	}
	assert.NoError(t, CheckAccounts(lines, testResolver()))
}

func TestCheckAccounts_Unknown(t *testing.T) {
	lines := []LedgerLine{line("9.9.9", Debit, "10", "ARS")}
	err := CheckAccounts(lines, testResolver())
	require.ErrorIs(t, err, ErrUnknownAccount)
	assert.Contains(t, err.Error(), "9.9.9")
}

func TestCheckAccounts_NonPostable(t *testing.T) {
	lines := []LedgerLine{line("1.3", Debit, "10", "ARS")}
	require.ErrorIs(t, CheckAccounts(lines, testResolver()), ErrNonPostableAccount)
}

func TestCheckAccounts_CurrencyMismatch(t *testing.T) {
	lines := []LedgerLine{line("1.1.9", Debit, "10", "ARS")}
	require.ErrorIs(t, CheckAccounts(lines, testResolver()), ErrCurrencyMismatch)
}

func TestSigned(t *testing.T) {
	assert.True(t, line(AccountCash, Debit, "10", "ARS").Signed().Equal(dec("10")))
	assert.True(t, line(AccountCash, Credit, "10", "ARS").Signed().Equal(dec("-10")))
}
