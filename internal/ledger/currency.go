package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type CurrencyDef struct {
	Code     string
	Name     string
	Exponent int // minor-unit digits: 2 for ARS/USD, 0 for JPY
}

var Currencies = map[string]CurrencyDef{
	"ARS": {Code: "ARS", Name: "Argentine Peso", Exponent: 2},
	"USD": {Code: "USD", Name: "US Dollar", Exponent: 2},
	"EUR": {Code: "EUR", Name: "Euro", Exponent: 2},
	"BRL": {Code: "BRL", Name: "Brazilian Real", Exponent: 2},
	"UYU": {Code: "UYU", Name: "Uruguayan Peso", Exponent: 2},
	"CLP": {Code: "CLP", Name: "Chilean Peso", Exponent: 0},
	"PYG": {Code: "PYG", Name: "Paraguayan Guarani", Exponent: 0},
	"GBP": {Code: "GBP", Name: "Pound Sterling", Exponent: 2},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Exponent: 0},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Exponent: 2},
}

// BaseCurrency is the organization's default denomination for accounts that
// do not declare one.
const BaseCurrency = "ARS"

func ValidCurrency(code string) bool {
	_, ok := Currencies[code]
	return ok
}

// CheckPrecision rejects amounts with more decimal places than the currency's
// minor unit allows.
func CheckPrecision(amount decimal.Decimal, currency string) error {
	cur, ok := Currencies[currency]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidCurrency, currency)
	}
	if amount.Exponent() < int32(-cur.Exponent) && !amount.Equal(amount.Truncate(int32(cur.Exponent))) {
		return fmt.Errorf("%w: %s has more than %d decimal places for %s",
			ErrBadPrecision, amount, cur.Exponent, currency)
	}
	return nil
}

// FormatAmount renders an amount at the currency's minor-unit precision.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur, ok := Currencies[currency]
	if !ok {
		return amount.String()
	}
	return amount.StringFixed(int32(cur.Exponent))
}

// CurrencyCodes returns the supported currency codes, sorted.
func CurrencyCodes() []string {
	codes := make([]string, 0, len(Currencies))
	for code := range Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
