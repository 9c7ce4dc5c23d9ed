package ledger

import "errors"

var (
	ErrUnknownAccount     = errors.New("unknown account")
	ErrNonPostableAccount = errors.New("account does not accept journal lines")
	ErrUnbalancedEntry    = errors.New("journal entry does not balance")
	ErrEmptyEntry         = errors.New("journal entry has no lines")
	ErrNegativeAmount     = errors.New("line amount must not be negative")
	ErrInvalidDirection   = errors.New("line direction must be debit or credit")
	ErrInvalidAccountCode = errors.New("invalid account code")
	ErrInvalidKind        = errors.New("invalid account kind")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrParentNotFound     = errors.New("parent account not found")
	ErrInvalidCurrency    = errors.New("invalid or unsupported currency code")
	ErrCurrencyMismatch   = errors.New("line currency does not match account currency")
	ErrBadPrecision       = errors.New("amount exceeds currency minor-unit precision")
	ErrEmptyDescription   = errors.New("entry description is required")
	ErrEntryNotFound      = errors.New("journal entry not found")
	ErrEntryNotPosted     = errors.New("journal entry is not posted")
	ErrPartyNotFound      = errors.New("third party not found")
	ErrDuplicateParty     = errors.New("third party already exists")
	ErrInvalidPartyKind   = errors.New("invalid third party kind")

	ErrConcurrencyConflict = errors.New("concurrent write conflict")
	ErrStoreUnavailable    = errors.New("store unavailable")
)
