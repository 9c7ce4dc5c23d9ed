package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
	StatusVoided Status = "voided"
)

type LedgerLine struct {
	ID           int64           `json:"id,omitempty"`
	EntryID      string          `json:"entry_id,omitempty"`
	AccountCode  string          `json:"account_code"`
	Direction    Direction       `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ThirdPartyID string          `json:"third_party_id,omitempty"`
	CostCenter   string          `json:"cost_center,omitempty"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
}

// Signed returns the line amount with the debit/credit sign convention:
// debits positive, credits negative.
func (l LedgerLine) Signed() decimal.Decimal {
	if l.Direction == Credit {
		return l.Amount.Neg()
	}
	return l.Amount
}

type JournalEntry struct {
	ID          string       `json:"id"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description"`
	Lines       []LedgerLine `json:"lines"`
	Status      Status       `json:"status"`
	RequestID   string       `json:"request_id,omitempty"`
	Actor       string       `json:"actor,omitempty"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
}

// PostContext carries the per-request identity the engine needs: an
// idempotency key, the acting user, and the entry timestamp. All three come
// from the caller; the engine treats them as opaque.
type PostContext struct {
	RequestID string
	Actor     string
	Timestamp time.Time
}

// AccountResolver looks up an account by code. The store implements it inside
// the posting transaction so resolution and write share one snapshot.
type AccountResolver interface {
	Resolve(code string) (*Account, error)
}

// Validate checks structural invariants: at least one line, each line with a
// valid direction, non-negative amount at the currency's precision, and
// per-currency debit/credit equality. Account existence is checked separately
// via CheckAccounts.
func (e *JournalEntry) Validate() error {
	if e.Description == "" {
		return ErrEmptyDescription
	}
	if len(e.Lines) == 0 {
		return ErrEmptyEntry
	}

	for i, l := range e.Lines {
		if l.Direction != Debit && l.Direction != Credit {
			return fmt.Errorf("%w: line %d has direction %q", ErrInvalidDirection, i, l.Direction)
		}
		if l.Amount.IsNegative() {
			return fmt.Errorf("%w: line %d amount %s", ErrNegativeAmount, i, l.Amount)
		}
		if !ValidCurrency(l.Currency) {
			return fmt.Errorf("%w: line %d currency %q", ErrInvalidCurrency, i, l.Currency)
		}
		if err := CheckPrecision(l.Amount, l.Currency); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}

	// A multi-currency entry must balance independently within each currency.
	debits := make(map[string]decimal.Decimal)
	credits := make(map[string]decimal.Decimal)
	for _, l := range e.Lines {
		if l.Direction == Debit {
			debits[l.Currency] = debits[l.Currency].Add(l.Amount)
		} else {
			credits[l.Currency] = credits[l.Currency].Add(l.Amount)
		}
	}
	for cur, d := range debits {
		if c := credits[cur]; !d.Equal(c) {
			return fmt.Errorf("%w: %s debits %s != credits %s (delta %s)",
				ErrUnbalancedEntry, cur, d, c, d.Sub(c))
		}
	}
	for cur, c := range credits {
		if _, seen := debits[cur]; !seen && !c.IsZero() {
			return fmt.Errorf("%w: %s debits 0 != credits %s (delta %s)",
				ErrUnbalancedEntry, cur, c, c.Neg())
		}
	}

	return nil
}

// CheckAccounts resolves every line's account and enforces, in order: the
// account exists, it is postable, and its declared currency (if any) matches
// the line's.
func CheckAccounts(lines []LedgerLine, resolver AccountResolver) error {
	for i, l := range lines {
		acct, err := resolver.Resolve(l.AccountCode)
		if errors.Is(err, ErrUnknownAccount) {
			return fmt.Errorf("%w: line %d references %q", ErrUnknownAccount, i, l.AccountCode)
		}
		if err != nil {
			return err
		}
		if !acct.Postable {
			return fmt.Errorf("%w: line %d references %s (%s)", ErrNonPostableAccount, i, acct.Code, acct.Name)
		}
		if acct.Currency != "" && acct.Currency != l.Currency {
			return fmt.Errorf("%w: line %d is %s, account %s is denominated in %s",
				ErrCurrencyMismatch, i, l.Currency, acct.Code, acct.Currency)
		}
	}
	return nil
}
