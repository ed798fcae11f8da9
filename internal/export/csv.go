// Package export renders ledger records into downloadable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"skeletonkey/internal/core"
)

var csvHeader = []string{
	"id", "date", "description", "merchant", "amount", "amount_cents",
	"category", "account", "is_recurring", "note",
}

// WriteCSV streams the given records as CSV, header first. Amounts appear
// both formatted ("R123.45") and as raw cents for spreadsheet use.
func WriteCSV(w io.Writer, records []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, t := range records {
		row := []string{
			t.ID,
			t.Date.String(),
			t.Description,
			t.Merchant,
			t.Amount.String(),
			strconv.FormatInt(t.Amount.Cents, 10),
			t.Category,
			t.Account,
			strconv.FormatBool(t.IsRecurring),
			t.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
