package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/shopspring/decimal"
)

func (s *Store) CreateParty(ctx context.Context, p *ledger.ThirdParty) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO third_parties (id, name, kind) VALUES (?, ?, ?)`,
		p.ID, p.Name, string(p.Kind),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateParty, p.ID)
		}
		return fmt.Errorf("insert party: %w", mapStoreErr(err))
	}
	return nil
}

func (s *Store) GetParty(ctx context.Context, id string) (*ledger.ThirdParty, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, name, kind, receivable, payable, created_at FROM third_parties WHERE id = ?`, id)
	return scanParty(row.Scan)
}

func (s *Store) ListParties(ctx context.Context) ([]ledger.ThirdParty, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, name, kind, receivable, payable, created_at FROM third_parties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var parties []ledger.ThirdParty
	for rows.Next() {
		p, err := scanParty(rows.Scan)
		if err != nil {
			return nil, err
		}
		parties = append(parties, *p)
	}
	return parties, rows.Err()
}

// PartyTotals aggregates stored balances across all parties.
func (s *Store) PartyTotals(ctx context.Context) (ledger.PartyTotals, error) {
	parties, err := s.ListParties(ctx)
	if err != nil {
		return ledger.PartyTotals{}, err
	}
	return ledger.ComputePartyTotals(parties), nil
}

// ReplayPartyBalances derives a party's balances by replaying every posted
// line that references it. The stored balances must always equal this replay;
// the function exists to prove (and audit) that property.
func (s *Store) ReplayPartyBalances(ctx context.Context, partyID string) (receivable, payable decimal.Decimal, err error) {
	if _, err := s.GetParty(ctx, partyID); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	rows, err := s.reader.QueryContext(ctx,
		`SELECT l.direction, l.amount, a.kind
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		JOIN accounts a ON a.code = l.account_code
		WHERE l.third_party_id = ? AND e.status = 'posted'
		ORDER BY l.id`, partyID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("replay party: %w", mapStoreErr(err))
	}
	defer rows.Close()

	for rows.Next() {
		var direction, amount, kind string
		if err := rows.Scan(&direction, &amount, &kind); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("scan replay row: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		line := ledger.LedgerLine{Direction: ledger.Direction(direction), Amount: amt}
		eff := ledger.EffectOf(line, ledger.Kind(kind))
		receivable = receivable.Add(eff.Receivable)
		payable = payable.Add(eff.Payable)
	}
	return receivable, payable, rows.Err()
}

func scanParty(scan func(...any) error) (*ledger.ThirdParty, error) {
	var p ledger.ThirdParty
	var recv, pay, createdAt string
	err := scan(&p.ID, &p.Name, &p.Kind, &recv, &pay, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrPartyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan party: %w", err)
	}
	p.ReceivableBalance, err = decimal.NewFromString(recv)
	if err != nil {
		return nil, fmt.Errorf("parse receivable %q: %w", recv, err)
	}
	p.PayableBalance, err = decimal.NewFromString(pay)
	if err != nil {
		return nil, fmt.Errorf("parse payable %q: %w", pay, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &p, nil
}
