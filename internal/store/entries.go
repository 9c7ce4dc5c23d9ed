package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// txResolver resolves accounts inside the posting transaction so that
// validation and write observe the same snapshot.
type txResolver struct {
	ctx context.Context
	tx  *sql.Tx
}

func (r txResolver) Resolve(code string) (*ledger.Account, error) {
	row := r.tx.QueryRowContext(r.ctx,
		`SELECT code, name, kind, level, parent_code, postable, currency, created_at FROM accounts WHERE code = ?`, code)
	return scanAccount(row.Scan)
}

// PostEntry validates the candidate lines and persists them as one posted
// journal entry, adjusting referenced third-party balances in the same
// transaction. Either everything lands or nothing does. A request id that was
// already posted returns the original entry unchanged.
func (s *Store) PostEntry(ctx context.Context, description string, lines []ledger.LedgerLine, pctx ledger.PostContext) (*ledger.JournalEntry, error) {
	ts := pctx.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	entry := &ledger.JournalEntry{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Date:        ts,
		Description: description,
		Lines:       lines,
		Status:      ledger.StatusPosted,
		RequestID:   pctx.RequestID,
		Actor:       pctx.Actor,
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", mapStoreErr(err))
	}
	defer tx.Rollback()

	resolver := txResolver{ctx: ctx, tx: tx}

	// Validation order: unknown account, non-postable, currency mismatch,
	// then structural/balance checks.
	if err := ledger.CheckAccounts(lines, resolver); err != nil {
		return nil, err
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	// Idempotent replay. The lookup shares the write transaction, so two
	// concurrent submissions of the same request id cannot both post.
	if pctx.RequestID != "" {
		var existingID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM journal_entries WHERE request_id = ?`, pctx.RequestID).Scan(&existingID)
		if err == nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return nil, fmt.Errorf("rollback on replay: %w", rbErr)
			}
			return s.GetEntry(ctx, existingID)
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("idempotency lookup: %w", mapStoreErr(err))
		}
	}

	// The entry starts as a draft so the immutability triggers let the lines
	// in; the status flips to posted once they are all written.
	var requestVal any
	if entry.RequestID != "" {
		requestVal = entry.RequestID
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO journal_entries (id, request_id, date, description, status, actor) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, requestVal, entry.Date.Format(time.RFC3339Nano), entry.Description, string(ledger.StatusDraft), entry.Actor,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", mapStoreErr(err))
	}

	for i := range entry.Lines {
		l := &entry.Lines[i]
		l.EntryID = entry.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO journal_lines (entry_id, account_code, direction, amount, currency, third_party_id, cost_center)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, l.AccountCode, string(l.Direction), l.Amount.String(), l.Currency,
			nullable(l.ThirdPartyID), nullable(l.CostCenter),
		)
		if err != nil {
			return nil, fmt.Errorf("insert line %d: %w", i, mapStoreErr(err))
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE journal_entries SET status = ? WHERE id = ?`, string(ledger.StatusPosted), entry.ID); err != nil {
		return nil, fmt.Errorf("post entry: %w", mapStoreErr(err))
	}

	if err := applyPartyEffects(ctx, tx, resolver, entry.Lines, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", mapStoreErr(err))
	}

	return entry, nil
}

// PostEvent builds an event's template lines and posts them as one entry.
func (s *Store) PostEvent(ctx context.Context, ev ledger.Event, pctx ledger.PostContext) (*ledger.JournalEntry, error) {
	lines, err := ledger.EventLines(ev)
	if err != nil {
		return nil, err
	}
	return s.PostEntry(ctx, ev.Description(), lines, pctx)
}

// VoidEntry marks a posted entry voided and reverses its third-party balance
// effects, atomically. The entry's lines stay on record.
func (s *Store) VoidEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", mapStoreErr(err))
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM journal_entries WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", mapStoreErr(err))
	}
	if ledger.Status(status) != ledger.StatusPosted {
		return nil, fmt.Errorf("%w: %s is %s", ledger.ErrEntryNotPosted, id, status)
	}

	lines, err := queryLines(ctx, tx.QueryContext, `SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE journal_entries SET status = 'voided' WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("void entry: %w", mapStoreErr(err))
	}

	if err := applyPartyEffects(ctx, tx, txResolver{ctx: ctx, tx: tx}, lines, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", mapStoreErr(err))
	}

	return s.GetEntry(ctx, id)
}

// applyPartyEffects folds each tagged line's balance effect into its party
// row. reverse negates the effects (used by VoidEntry).
func applyPartyEffects(ctx context.Context, tx *sql.Tx, resolver ledger.AccountResolver, lines []ledger.LedgerLine, reverse bool) error {
	type delta struct {
		receivable decimal.Decimal
		payable    decimal.Decimal
	}
	deltas := make(map[string]*delta)
	var order []string

	for _, l := range lines {
		if l.ThirdPartyID == "" {
			continue
		}
		acct, err := resolver.Resolve(l.AccountCode)
		if errors.Is(err, ledger.ErrUnknownAccount) {
			return fmt.Errorf("%w: %s", ledger.ErrUnknownAccount, l.AccountCode)
		}
		if err != nil {
			return fmt.Errorf("resolve account %s: %w", l.AccountCode, mapStoreErr(err))
		}
		eff := ledger.EffectOf(l, acct.Kind)
		d, ok := deltas[l.ThirdPartyID]
		if !ok {
			d = &delta{}
			deltas[l.ThirdPartyID] = d
			order = append(order, l.ThirdPartyID)
		}
		d.receivable = d.receivable.Add(eff.Receivable)
		d.payable = d.payable.Add(eff.Payable)
	}

	for _, partyID := range order {
		d := deltas[partyID]
		if reverse {
			d.receivable = d.receivable.Neg()
			d.payable = d.payable.Neg()
		}

		var recv, pay string
		err := tx.QueryRowContext(ctx,
			`SELECT receivable, payable FROM third_parties WHERE id = ?`, partyID).Scan(&recv, &pay)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", ledger.ErrPartyNotFound, partyID)
		}
		if err != nil {
			return fmt.Errorf("load party %s: %w", partyID, mapStoreErr(err))
		}

		recvDec, err := decimal.NewFromString(recv)
		if err != nil {
			return fmt.Errorf("parse receivable %q: %w", recv, err)
		}
		payDec, err := decimal.NewFromString(pay)
		if err != nil {
			return fmt.Errorf("parse payable %q: %w", pay, err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE third_parties SET receivable = ?, payable = ? WHERE id = ?`,
			recvDec.Add(d.receivable).String(), payDec.Add(d.payable).String(), partyID,
		)
		if err != nil {
			return fmt.Errorf("update party %s: %w", partyID, mapStoreErr(err))
		}
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	entry, err := scanEntry(s.reader.QueryRowContext(ctx,
		`SELECT id, request_id, date, description, status, actor, created_at FROM journal_entries WHERE id = ?`, id).Scan)
	if err != nil {
		return nil, err
	}

	lines, err := queryLines(ctx, s.reader.QueryContext,
		`SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines

	return entry, nil
}

func (s *Store) ListEntries(ctx context.Context, filter EntryFilter) ([]ledger.JournalEntry, error) {
	query := `SELECT DISTINCT e.id, e.request_id, e.date, e.description, e.status, e.actor, e.created_at FROM journal_entries e`
	args := []any{}

	switch {
	case filter.AccountCode != "":
		query += ` JOIN journal_lines l ON l.entry_id = e.id WHERE l.account_code = ?`
		args = append(args, filter.AccountCode)
	case filter.PartyID != "":
		query += ` JOIN journal_lines l ON l.entry_id = e.id WHERE l.third_party_id = ?`
		args = append(args, filter.PartyID)
	default:
		query += ` WHERE 1=1`
	}

	query += ` ORDER BY e.date DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", mapStoreErr(err))
	}

	// Drain the header rows before loading lines. Nesting a second query
	// inside the iteration would hold a reader connection open while asking
	// the same pool for another one, which deadlocks when the pool is small.
	var entries []ledger.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range entries {
		lines, err := queryLines(ctx, s.reader.QueryContext,
			`SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = ? ORDER BY id`, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Lines = lines
	}
	return entries, nil
}

const lineColumns = `id, entry_id, account_code, direction, amount, currency, third_party_id, cost_center, created_at`

type queryFunc func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func queryLines(ctx context.Context, query queryFunc, stmt string, args ...any) ([]ledger.LedgerLine, error) {
	rows, err := query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var lines []ledger.LedgerLine
	for rows.Next() {
		var l ledger.LedgerLine
		var amount, createdAt string
		var party, costCenter sql.NullString
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountCode, &l.Direction, &amount, &l.Currency, &party, &costCenter, &createdAt); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		l.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		l.ThirdPartyID = party.String
		l.CostCenter = costCenter.String
		l.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanEntry(scan func(...any) error) (*ledger.JournalEntry, error) {
	var e ledger.JournalEntry
	var requestID sql.NullString
	var date, createdAt string
	err := scan(&e.ID, &requestID, &date, &e.Description, &e.Status, &e.Actor, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	e.RequestID = requestID.String
	e.Date, _ = time.Parse(time.RFC3339Nano, date)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &e, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
