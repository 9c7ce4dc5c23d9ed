package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLines_Templates(t *testing.T) {
	amt := dec("5000")

	tests := []struct {
		name        string
		event       Event
		debitAcct   string
		creditAcct  string
		debitParty  string
		creditParty string
	}{
		{
			name: "input purchase",
			event: InputPurchase{
				InputAccount: AccountFertInventory,
				SupplierID:   "agro-sur",
				Input:        "urea",
				Amount:       amt,
				Currency:     "ARS",
			},
			debitAcct:   AccountFertInventory,
			creditAcct:  AccountPayables,
			creditParty: "agro-sur",
		},
		{
			name: "input application",
			event: InputApplication{
				InputAccount: AccountFertInventory,
				Input:        "urea",
				Crop:         "wheat",
				Amount:       amt,
				Currency:     "ARS",
				CostCenter:   "lot-3",
			},
			debitAcct:  AccountCropsInProgress,
			creditAcct: AccountFertInventory,
		},
		{
			name:       "harvest",
			event:      Harvest{Crop: "wheat", Amount: amt, Currency: "ARS"},
			debitAcct:  AccountGrainStock,
			creditAcct: AccountCropsInProgress,
		},
		{
			name:       "consignment delivery",
			event:      ConsignmentDelivery{Crop: "wheat", Buyer: "acopio-norte", Amount: amt, Currency: "ARS"},
			debitAcct:  AccountGrainConsigned,
			creditAcct: AccountGrainStock,
		},
		{
			name:       "direct sale",
			event:      DirectSale{Crop: "wheat", BuyerID: "molino-rio", Amount: amt, Currency: "ARS"},
			debitAcct:  AccountReceivables,
			creditAcct: AccountGrainSales,
			debitParty: "molino-rio",
		},
		{
			name:        "collection",
			event:       Collection{CustomerID: "molino-rio", Amount: amt, Currency: "ARS"},
			debitAcct:   AccountCash,
			creditAcct:  AccountReceivables,
			creditParty: "molino-rio",
		},
		{
			name:       "supplier payment",
			event:      SupplierPayment{SupplierID: "agro-sur", Amount: amt, Currency: "ARS"},
			debitAcct:  AccountPayables,
			creditAcct: AccountCash,
			debitParty: "agro-sur",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := EventLines(tt.event)
			require.NoError(t, err)
			require.Len(t, lines, 2)

			debit, credit := lines[0], lines[1]
			assert.Equal(t, Debit, debit.Direction)
			assert.Equal(t, Credit, credit.Direction)
			assert.Equal(t, tt.debitAcct, debit.AccountCode)
			assert.Equal(t, tt.creditAcct, credit.AccountCode)
			assert.Equal(t, tt.debitParty, debit.ThirdPartyID)
			assert.Equal(t, tt.creditParty, credit.ThirdPartyID)
			assert.True(t, debit.Amount.Equal(credit.Amount))

			entry := &JournalEntry{Description: tt.event.Description(), Lines: lines}
			assert.NoError(t, entry.Validate())
			assert.NotEmpty(t, tt.event.Description())
		})
	}
}

func TestEventLines_CashAccountOverride(t *testing.T) {
	lines, err := EventLines(Collection{CashAccount: AccountBank, CustomerID: "c1", Amount: dec("10"), Currency: "ARS"})
	require.NoError(t, err)
	assert.Equal(t, AccountBank, lines[0].AccountCode)

	lines, err = EventLines(SupplierPayment{SupplierID: "s1", Amount: dec("10"), Currency: "ARS"})
	require.NoError(t, err)
	assert.Equal(t, AccountCash, lines[1].AccountCode)
}

func TestEventLines_CostCenterPropagation(t *testing.T) {
	lines, err := EventLines(Harvest{Crop: "maize", Amount: dec("900"), Currency: "ARS", CostCenter: "lot-7"})
	require.NoError(t, err)
	assert.Equal(t, "lot-7", lines[0].CostCenter)
	assert.Equal(t, "lot-7", lines[1].CostCenter)
}
