// internal/ledger/csv.go
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/resaleworks/bookkeeper/internal/domain"
)

// ExportCSV writes the view's filtered rows, all pages, in the current sort
// order with the currently visible columns. Pagination never truncates an
// export.
func (v *View) ExportCSV(w io.Writer) error {
	v.mu.Lock()
	rows := append([]domain.LedgerRow(nil), v.display...)
	cols := append([]ColumnKey(nil), v.visible...)
	v.mu.Unlock()

	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = string(col)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			record[i] = cellValue(row, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	return nil
}

// ExportFilename names the artifact after the window, the tab when narrowed
// past all, and the platform filter when one is set.
func (v *View) ExportFilename() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "transactions_%s_to_%s",
		v.start.Format("2006-01-02"), v.end.Format("2006-01-02"))
	if v.tab != TabAll {
		fmt.Fprintf(&b, "_%s", v.tab)
	}
	if v.filters.Platform != "" {
		fmt.Fprintf(&b, "_platform_%s", filenameToken(v.filters.Platform))
	}
	b.WriteString(".csv")
	return b.String()
}

func filenameToken(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

func cellValue(row domain.LedgerRow, col ColumnKey) string {
	switch col {
	case ColDate:
		if row.Date.IsZero() {
			return ""
		}
		return row.Date.Format("2006-01-02")
	case ColSourceType:
		return string(row.SourceType)
	case ColDescription:
		return row.Description
	case ColVendor:
		return row.Vendor
	case ColPlatform:
		return row.Platform
	case ColLedgerAccount:
		return row.LedgerAccount
	case ColBankAccount:
		return row.BankAccount
	case ColAmount:
		return strconv.FormatFloat(row.Amount, 'f', 2, 64)
	case ColRelatedID:
		if row.RelatedID == nil {
			return ""
		}
		return row.RelatedID.String()
	default:
		return ""
	}
}
