// Package export serializes posted journal data to flat CSV, one row per
// ledger line.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/campolibro/campolibro/internal/ledger"
)

// Header is the CSV header for journal exports.
const Header = "entry_id,date,description,status,account_code,direction,amount,currency,third_party,cost_center"

const dateFormat = "2006-01-02"

// WriteJournal writes one CSV row per line of the given entries, including
// the header. Voided entries are written with their status so downstream
// consumers can filter them.
func WriteJournal(w io.Writer, entries []ledger.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, e := range entries {
		for _, l := range e.Lines {
			rec := []string{
				e.ID,
				e.Date.Format(dateFormat),
				e.Description,
				string(e.Status),
				l.AccountCode,
				string(l.Direction),
				ledger.FormatAmount(l.Amount, l.Currency),
				l.Currency,
				l.ThirdPartyID,
				l.CostCenter,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	return cw.Error()
}
