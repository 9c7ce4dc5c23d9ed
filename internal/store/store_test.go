package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campolibro/campolibro/internal/geo"
	"github.com/campolibro/campolibro/internal/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(account string, dir ledger.Direction, amount, currency string) ledger.LedgerLine {
	return ledger.LedgerLine{
		AccountCode: account,
		Direction:   dir,
		Amount:      dec(amount),
		Currency:    currency,
	}
}

func createParty(t *testing.T, s *Store, id string, kind ledger.PartyKind) {
	t.Helper()
	require.NoError(t, s.CreateParty(context.Background(), &ledger.ThirdParty{
		ID: id, Name: id, Kind: kind,
	}))
}

func TestMigrate_SeedsChart(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	accounts, err := s.ListAccounts(ctx, AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.PredefinedChart))

	cash, err := s.GetAccount(ctx, ledger.AccountCash)
	require.NoError(t, err)
	assert.True(t, cash.Postable)
	assert.Equal(t, ledger.KindAsset, cash.Kind)

	parent, err := s.GetAccount(ctx, "1.1")
	require.NoError(t, err)
	assert.False(t, parent.Postable)
	assert.Equal(t, "1", parent.ParentCode)
}

func TestCreateAccount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	acct := &ledger.Account{Code: "1.3.4", Name: "Fuel", Postable: true}
	require.NoError(t, s.CreateAccount(ctx, acct))

	got, err := s.GetAccount(ctx, "1.3.4")
	require.NoError(t, err)
	assert.Equal(t, ledger.KindAsset, got.Kind)
	assert.Equal(t, "1.3", got.ParentCode)
	assert.True(t, got.Postable)

	// Duplicate code.
	err = s.CreateAccount(ctx, &ledger.Account{Code: "1.3.4", Name: "Fuel again", Postable: true})
	require.ErrorIs(t, err, ledger.ErrDuplicateAccount)

	// Missing parent.
	err = s.CreateAccount(ctx, &ledger.Account{Code: "1.9.1", Name: "Orphan", Postable: true})
	require.ErrorIs(t, err, ledger.ErrParentNotFound)
}

func TestPostEntry_FertilizerPurchase(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createParty(t, s, "agro-sur", ledger.PartySupplier)

	entry, err := s.PostEvent(ctx, ledger.InputPurchase{
		InputAccount: ledger.AccountFertInventory,
		SupplierID:   "agro-sur",
		Input:        "urea",
		Amount:       dec("5000"),
		Currency:     "ARS",
	}, ledger.PostContext{Actor: "ana"})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPosted, entry.Status)
	require.Len(t, entry.Lines, 2)

	// Supplier now carries a 5000 payable and no receivable.
	party, err := s.GetParty(ctx, "agro-sur")
	require.NoError(t, err)
	assert.True(t, party.PayableBalance.Equal(dec("5000")))
	assert.True(t, party.ReceivableBalance.IsZero())

	// Inventory account shows the debit.
	balances, err := s.AccountBalance(ctx, ledger.AccountFertInventory)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "ARS", balances[0].Currency)
	assert.True(t, balances[0].Balance.Equal(dec("5000")))

	got, err := s.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Actor)
	assert.Equal(t, entry.ID, got.ID)
}

func TestPostEntry_UnbalancedPersistsNothing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createParty(t, s, "agro-sur", ledger.PartySupplier)

	lines := []ledger.LedgerLine{
		line(ledger.AccountFertInventory, ledger.Debit, "5000", "ARS"),
		{AccountCode: ledger.AccountPayables, Direction: ledger.Credit, Amount: dec("4000"), Currency: "ARS", ThirdPartyID: "agro-sur"},
	}
	_, err := s.PostEntry(ctx, "bad purchase", lines, ledger.PostContext{})
	require.ErrorIs(t, err, ledger.ErrUnbalancedEntry)

	entries, err := s.ListEntries(ctx, EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	party, err := s.GetParty(ctx, "agro-sur")
	require.NoError(t, err)
	assert.True(t, party.PayableBalance.IsZero())
}

func TestPostEntry_NonPostableRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lines := []ledger.LedgerLine{
		line("1.3", ledger.Debit, "100", "ARS"),
		line(ledger.AccountCash, ledger.Credit, "100", "ARS"),
	}
	_, err := s.PostEntry(ctx, "aggregation account", lines, ledger.PostContext{})
	require.ErrorIs(t, err, ledger.ErrNonPostableAccount)
}

func TestPostEntry_UnknownAccountRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lines := []ledger.LedgerLine{
		line("9.9.9", ledger.Debit, "100", "ARS"),
		line(ledger.AccountCash, ledger.Credit, "100", "ARS"),
	}
	_, err := s.PostEntry(ctx, "ghost account", lines, ledger.PostContext{})
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestPostEntry_UnknownPartyPersistsNothing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lines := []ledger.LedgerLine{
		line(ledger.AccountFertInventory, ledger.Debit, "100", "ARS"),
		{AccountCode: ledger.AccountPayables, Direction: ledger.Credit, Amount: dec("100"), Currency: "ARS", ThirdPartyID: "nobody"},
	}
	_, err := s.PostEntry(ctx, "purchase from ghost", lines, ledger.PostContext{})
	require.ErrorIs(t, err, ledger.ErrPartyNotFound)

	entries, err := s.ListEntries(ctx, EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostEntry_IdempotentReplay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createParty(t, s, "agro-sur", ledger.PartySupplier)

	pctx := ledger.PostContext{RequestID: "req-42", Actor: "ana"}
	ev := ledger.InputPurchase{
		InputAccount: ledger.AccountFertInventory,
		SupplierID:   "agro-sur",
		Input:        "urea",
		Amount:       dec("5000"),
		Currency:     "ARS",
	}

	first, err := s.PostEvent(ctx, ev, pctx)
	require.NoError(t, err)

	second, err := s.PostEvent(ctx, ev, pctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Only one entry exists and the payable moved once.
	entries, err := s.ListEntries(ctx, EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	party, err := s.GetParty(ctx, "agro-sur")
	require.NoError(t, err)
	assert.True(t, party.PayableBalance.Equal(dec("5000")))
}

func TestVoidEntry_ReversesPartyEffects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createParty(t, s, "molino-rio", ledger.PartyCustomer)

	entry, err := s.PostEvent(ctx, ledger.DirectSale{
		Crop: "wheat", BuyerID: "molino-rio", Amount: dec("12000"), Currency: "ARS",
	}, ledger.PostContext{})
	require.NoError(t, err)

	party, err := s.GetParty(ctx, "molino-rio")
	require.NoError(t, err)
	require.True(t, party.ReceivableBalance.Equal(dec("12000")))

	voided, err := s.VoidEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusVoided, voided.Status)
	assert.Len(t, voided.Lines, 2)

	party, err = s.GetParty(ctx, "molino-rio")
	require.NoError(t, err)
	assert.True(t, party.ReceivableBalance.IsZero())

	// Voiding again fails, as does voiding a nonexistent entry.
	_, err = s.VoidEntry(ctx, entry.ID)
	require.ErrorIs(t, err, ledger.ErrEntryNotPosted)
	_, err = s.VoidEntry(ctx, "no-such-entry")
	require.ErrorIs(t, err, ledger.ErrEntryNotFound)
}

func TestReplayPartyBalances_MatchesStored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createParty(t, s, "coop-centro", ledger.PartyBoth)

	events := []ledger.Event{
		ledger.InputPurchase{InputAccount: ledger.AccountSeedInventory, SupplierID: "coop-centro", Input: "wheat seed", Amount: dec("3000"), Currency: "ARS"},
		ledger.DirectSale{Crop: "wheat", BuyerID: "coop-centro", Amount: dec("10000"), Currency: "ARS"},
		ledger.Collection{CustomerID: "coop-centro", Amount: dec("4000"), Currency: "ARS"},
		ledger.SupplierPayment{SupplierID: "coop-centro", Amount: dec("1000"), Currency: "ARS"},
	}
	for _, ev := range events {
		_, err := s.PostEvent(ctx, ev, ledger.PostContext{})
		require.NoError(t, err)
	}

	party, err := s.GetParty(ctx, "coop-centro")
	require.NoError(t, err)
	assert.True(t, party.ReceivableBalance.Equal(dec("6000")))
	assert.True(t, party.PayableBalance.Equal(dec("2000")))

	recv, pay, err := s.ReplayPartyBalances(ctx, "coop-centro")
	require.NoError(t, err)
	assert.True(t, recv.Equal(party.ReceivableBalance))
	assert.True(t, pay.Equal(party.PayableBalance))
}

func TestListEntries_Filters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createParty(t, s, "agro-sur", ledger.PartySupplier)
	createParty(t, s, "molino-rio", ledger.PartyCustomer)

	_, err := s.PostEvent(ctx, ledger.InputPurchase{
		InputAccount: ledger.AccountFertInventory, SupplierID: "agro-sur",
		Input: "urea", Amount: dec("5000"), Currency: "ARS",
	}, ledger.PostContext{})
	require.NoError(t, err)
	_, err = s.PostEvent(ctx, ledger.DirectSale{
		Crop: "wheat", BuyerID: "molino-rio", Amount: dec("9000"), Currency: "ARS",
	}, ledger.PostContext{})
	require.NoError(t, err)

	all, err := s.ListEntries(ctx, EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byAccount, err := s.ListEntries(ctx, EntryFilter{AccountCode: ledger.AccountFertInventory})
	require.NoError(t, err)
	require.Len(t, byAccount, 1)

	byParty, err := s.ListEntries(ctx, EntryFilter{PartyID: "molino-rio"})
	require.NoError(t, err)
	require.Len(t, byParty, 1)
	assert.NotEqual(t, byAccount[0].ID, byParty[0].ID)
}

func TestListEntries_SingleReaderConn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Line loading must not run while the header rows still hold a reader
	// connection, or a one-connection pool blocks forever.
	s.reader.SetMaxOpenConns(1)

	for i := 0; i < 3; i++ {
		_, err := s.PostEntry(ctx, "opening balance",
			[]ledger.LedgerLine{
				line(ledger.AccountCash, ledger.Debit, "100", "ARS"),
				line(ledger.AccountCapital, ledger.Credit, "100", "ARS"),
			}, ledger.PostContext{})
		require.NoError(t, err)
	}

	type result struct {
		entries []ledger.JournalEntry
		err     error
	}
	done := make(chan result, 1)
	go func() {
		entries, err := s.ListEntries(ctx, EntryFilter{})
		done <- result{entries, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.Len(t, res.entries, 3)
		for _, e := range res.entries {
			assert.Len(t, e.Lines, 2)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("ListEntries did not return; reader pool exhausted")
	}
}

type stubResolver struct{ err error }

func (r stubResolver) Resolve(string) (*ledger.Account, error) { return nil, r.err }

func TestApplyPartyEffects_ResolverErrorPropagates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.writer.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	lines := []ledger.LedgerLine{{
		AccountCode: ledger.AccountReceivables, Direction: ledger.Debit,
		Amount: dec("10"), Currency: "ARS", ThirdPartyID: "molino-rio",
	}}

	// A transient store failure keeps its identity instead of turning into
	// an unknown-account error.
	busy := fmt.Errorf("scan account: %w", ledger.ErrConcurrencyConflict)
	err = applyPartyEffects(ctx, tx, stubResolver{err: busy}, lines, false)
	require.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	require.NotErrorIs(t, err, ledger.ErrUnknownAccount)

	err = applyPartyEffects(ctx, tx, stubResolver{err: ledger.ErrUnknownAccount}, lines, false)
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestCreateParty_Duplicate(t *testing.T) {
	s := openTestStore(t)
	createParty(t, s, "agro-sur", ledger.PartySupplier)

	err := s.CreateParty(context.Background(), &ledger.ThirdParty{
		ID: "agro-sur", Name: "Agro Sur SA", Kind: ledger.PartySupplier,
	})
	require.ErrorIs(t, err, ledger.ErrDuplicateParty)
}

// --- plots ---

func squarePolygon(side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{0, 0}, {side, 0}, {side, side}, {0, side}, {0, 0},
	}}
}

func TestCreatePlot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	plot := &geo.Plot{FieldID: "f1", Name: "Lote 3", Code: "L3"}
	v, err := s.CreatePlot(ctx, plot, squarePolygon(1.0/111.0), "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Version)
	assert.InDelta(t, 100.0, v.AreaHectares, 1e-9)
	assert.InDelta(t, 100.0, plot.AreaHectares, 1e-9)

	got, err := s.GetPlot(ctx, plot.ID)
	require.NoError(t, err)
	assert.Equal(t, "L3", got.Code)

	// Duplicate plot code.
	_, err = s.CreatePlot(ctx, &geo.Plot{FieldID: "f1", Name: "Other", Code: "L3"}, squarePolygon(0.01), "ana")
	require.ErrorIs(t, err, geo.ErrDuplicatePlot)
}

func TestAppendGeometryVersion_Monotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	plot := &geo.Plot{FieldID: "f1", Name: "Lote 5", Code: "L5"}
	_, err := s.CreatePlot(ctx, plot, squarePolygon(1.0/111.0), "ana")
	require.NoError(t, err)

	v2, err := s.AppendGeometryVersion(ctx, plot.ID, squarePolygon(0.9/111.0), "ana", "fence moved")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	v3, err := s.AppendGeometryVersion(ctx, plot.ID, squarePolygon(1.1/111.0), "ana", "survey correction")
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)

	versions, err := s.ListGeometryVersions(ctx, plot.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}

	// The plot's area follows the latest version.
	got, err := s.GetPlot(ctx, plot.ID)
	require.NoError(t, err)
	assert.InDelta(t, v3.AreaHectares, got.AreaHectares, 1e-9)

	// Earlier versions are untouched.
	v1, err := s.GetGeometryVersion(ctx, plot.ID, 1)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, v1.AreaHectares, 1e-9)

	_, err = s.AppendGeometryVersion(ctx, "no-such-plot", squarePolygon(0.01), "ana", "")
	require.ErrorIs(t, err, geo.ErrPlotNotFound)
}

func TestCompareGeometryVersions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	plot := &geo.Plot{FieldID: "f1", Name: "Lote 7", Code: "L7"}
	_, err := s.CreatePlot(ctx, plot, squarePolygon(1.0/111.0), "ana")
	require.NoError(t, err)

	// Shrink to 95 ha: sqrt(0.95) scales the side.
	_, err = s.AppendGeometryVersion(ctx, plot.ID, squarePolygon(0.9746794344808963/111.0), "ana", "boundary dispute")
	require.NoError(t, err)

	cmp, err := s.CompareGeometryVersions(ctx, plot.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp.FromVersion)
	assert.Equal(t, 2, cmp.ToVersion)
	assert.InDelta(t, -5.0, cmp.DeltaHa, 1e-6)
	assert.InDelta(t, -5.00, cmp.DeltaPercent, 1e-9)

	_, err = s.CompareGeometryVersions(ctx, plot.ID, 1, 9)
	require.ErrorIs(t, err, geo.ErrVersionNotFound)
}

func TestListPlots_FieldFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []struct{ field, name, code string }{
		{"f1", "Lote 1", "L1"},
		{"f1", "Lote 2", "L2"},
		{"f2", "Lote 9", "L9"},
	} {
		_, err := s.CreatePlot(ctx, &geo.Plot{FieldID: p.field, Name: p.name, Code: p.code}, squarePolygon(0.01), "ana")
		require.NoError(t, err)
	}

	all, err := s.ListPlots(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	f1, err := s.ListPlots(ctx, "f1")
	require.NoError(t, err)
	assert.Len(t, f1, 2)
}
