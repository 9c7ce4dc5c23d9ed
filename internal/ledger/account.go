package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindAsset     Kind = "asset"
	KindLiability Kind = "liability"
	KindEquity    Kind = "equity"
	KindIncome    Kind = "income"
	KindExpense   Kind = "expense"
)

var AllKinds = []Kind{KindAsset, KindLiability, KindEquity, KindIncome, KindExpense}

type Account struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	Level      int       `json:"level"`
	ParentCode string    `json:"parent_code,omitempty"`
	Postable   bool      `json:"postable"`
	Currency   string    `json:"currency,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostableLevel is the hierarchy depth at which accounts accept journal lines.
// Levels above it are aggregation-only.
const PostableLevel = 3

// KindForCode derives the account kind from the top segment of a dotted code.
func KindForCode(code string) (Kind, error) {
	top := code
	if i := strings.IndexByte(code, '.'); i >= 0 {
		top = code[:i]
	}
	switch top {
	case "1":
		return KindAsset, nil
	case "2":
		return KindLiability, nil
	case "3":
		return KindEquity, nil
	case "4":
		return KindIncome, nil
	case "5":
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q (top segment must be 1-5)", ErrInvalidAccountCode, code)
	}
}

// ParseCode validates a dotted hierarchical code and returns its level and
// parent code. Root codes ("1".."5") have level 1 and no parent.
func ParseCode(code string) (level int, parent string, err error) {
	if code == "" {
		return 0, "", fmt.Errorf("%w: empty", ErrInvalidAccountCode)
	}
	segments := strings.Split(code, ".")
	for _, seg := range segments {
		if seg == "" {
			return 0, "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidAccountCode, code)
		}
		if _, perr := strconv.Atoi(seg); perr != nil {
			return 0, "", fmt.Errorf("%w: %q segment %q is not numeric", ErrInvalidAccountCode, code, seg)
		}
	}
	level = len(segments)
	if level > 1 {
		parent = strings.Join(segments[:level-1], ".")
	}
	return level, parent, nil
}

// NormalBalance returns the sign convention for a kind. Assets and expenses
// are debit-normal; liabilities, equity and income are credit-normal.
func NormalBalance(k Kind) Direction {
	switch k {
	case KindAsset, KindExpense:
		return Debit
	default:
		return Credit
	}
}

func ValidKind(k Kind) bool {
	for _, v := range AllKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Validate checks account invariants: a well-formed dotted code, a kind
// matching the code's top segment, level derived from the code, and a
// postable flag consistent with the level.
func (a *Account) Validate() error {
	level, parent, err := ParseCode(a.Code)
	if err != nil {
		return err
	}

	expectedKind, err := KindForCode(a.Code)
	if err != nil {
		return err
	}
	if a.Kind == "" {
		a.Kind = expectedKind
	}
	if a.Kind != expectedKind {
		return fmt.Errorf("%w: code %s implies %s, got %s", ErrInvalidKind, a.Code, expectedKind, a.Kind)
	}

	if a.Level == 0 {
		a.Level = level
	}
	if a.Level != level {
		return fmt.Errorf("%w: code %s has level %d, got %d", ErrInvalidAccountCode, a.Code, level, a.Level)
	}
	a.ParentCode = parent

	if a.Postable && a.Level != PostableLevel {
		return fmt.Errorf("%w: only level-%d accounts are postable, %s is level %d",
			ErrInvalidAccountCode, PostableLevel, a.Code, a.Level)
	}

	if a.Currency != "" && !ValidCurrency(a.Currency) {
		return fmt.Errorf("%w: %s", ErrInvalidCurrency, a.Currency)
	}

	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}

	return nil
}
