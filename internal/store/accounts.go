package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/shopspring/decimal"
)

func (s *Store) CreateAccount(ctx context.Context, acct *ledger.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return mapStoreErr(err)
	}
	defer tx.Rollback()

	// Every non-root account needs a parent exactly one level up.
	if acct.ParentCode != "" {
		var parentLevel int
		err := tx.QueryRowContext(ctx,
			`SELECT level FROM accounts WHERE code = ?`, acct.ParentCode).Scan(&parentLevel)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s (parent of %s)", ledger.ErrParentNotFound, acct.ParentCode, acct.Code)
		}
		if err != nil {
			return fmt.Errorf("lookup parent: %w", mapStoreErr(err))
		}
		if parentLevel != acct.Level-1 {
			return fmt.Errorf("%w: parent %s has level %d, expected %d",
				ledger.ErrInvalidAccountCode, acct.ParentCode, parentLevel, acct.Level-1)
		}
	}

	var parentVal any
	if acct.ParentCode != "" {
		parentVal = acct.ParentCode
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (code, name, kind, level, parent_code, postable, currency) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		acct.Code, acct.Name, string(acct.Kind), acct.Level, parentVal, boolToInt(acct.Postable), acct.Currency,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, acct.Code)
		}
		return fmt.Errorf("insert account: %w", mapStoreErr(err))
	}

	return tx.Commit()
}

func (s *Store) GetAccount(ctx context.Context, code string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT code, name, kind, level, parent_code, postable, currency, created_at FROM accounts WHERE code = ?`, code)
	return scanAccount(row.Scan)
}

func (s *Store) ListAccounts(ctx context.Context, filter AccountFilter) ([]ledger.Account, error) {
	query := `SELECT code, name, kind, level, parent_code, postable, currency, created_at FROM accounts WHERE 1=1`
	args := []any{}

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Postable != nil {
		query += ` AND postable = ?`
		args = append(args, boolToInt(*filter.Postable))
	}

	query += ` ORDER BY code`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acct, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

// CurrencyBalance is one currency's net balance on an account, signed
// debit-positive.
type CurrencyBalance struct {
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// AccountBalance sums posted lines against the account, per currency.
// Decimal amounts are stored as text, so summation happens here, not in SQL.
func (s *Store) AccountBalance(ctx context.Context, code string) ([]CurrencyBalance, error) {
	if _, err := s.GetAccount(ctx, code); err != nil {
		return nil, err
	}

	rows, err := s.reader.QueryContext(ctx,
		`SELECT l.direction, l.amount, l.currency
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE l.account_code = ? AND e.status = 'posted'`, code)
	if err != nil {
		return nil, fmt.Errorf("account balance: %w", mapStoreErr(err))
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	var order []string
	for rows.Next() {
		var direction, amount, currency string
		if err := rows.Scan(&direction, &amount, &currency); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		if ledger.Direction(direction) == ledger.Credit {
			amt = amt.Neg()
		}
		if _, seen := sums[currency]; !seen {
			order = append(order, currency)
		}
		sums[currency] = sums[currency].Add(amt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	balances := make([]CurrencyBalance, 0, len(order))
	for _, cur := range order {
		balances = append(balances, CurrencyBalance{Currency: cur, Balance: sums[cur]})
	}
	return balances, nil
}

func scanAccount(scan func(...any) error) (*ledger.Account, error) {
	var acct ledger.Account
	var parent sql.NullString
	var postable int
	var createdAt string
	err := scan(&acct.Code, &acct.Name, &acct.Kind, &acct.Level, &parent, &postable, &acct.Currency, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrUnknownAccount
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	acct.ParentCode = parent.String
	acct.Postable = postable == 1
	acct.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &acct, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
