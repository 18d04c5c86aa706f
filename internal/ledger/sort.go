// internal/ledger/sort.go
package ledger

import (
	"sort"

	"github.com/resaleworks/bookkeeper/internal/domain"
)

// sortValue extracts one column for ordering. Numeric columns compare
// numerically, everything else as case-sensitive strings. present=false
// marks a missing value, which sorts after every defined value in both
// directions.
func sortValue(row domain.LedgerRow, key ColumnKey) (num float64, str string, numeric, present bool) {
	switch key {
	case ColAmount:
		return row.Amount, "", true, true
	case ColDate:
		if row.Date.IsZero() {
			return 0, "", true, false
		}
		return float64(row.Date.UnixNano()), "", true, true
	case ColSourceType:
		return 0, string(row.SourceType), false, true
	case ColDescription:
		return 0, row.Description, false, row.Description != ""
	case ColVendor:
		return 0, row.Vendor, false, row.Vendor != ""
	case ColPlatform:
		return 0, row.Platform, false, row.Platform != ""
	case ColLedgerAccount:
		return 0, row.LedgerAccount, false, row.LedgerAccount != ""
	case ColBankAccount:
		return 0, row.BankAccount, false, row.BankAccount != ""
	case ColRelatedID:
		if row.RelatedID == nil {
			return 0, "", false, false
		}
		return 0, row.RelatedID.String(), false, true
	default:
		return 0, "", false, false
	}
}

// sortRows orders rows in place by a single key. Flipping the direction
// reverses the defined values only; missing values stay last either way.
func sortRows(rows []domain.LedgerRow, key ColumnKey, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		an, as, numeric, aok := sortValue(rows[i], key)
		bn, bs, _, bok := sortValue(rows[j], key)
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		if numeric {
			if an == bn {
				return false
			}
			if ascending {
				return an < bn
			}
			return an > bn
		}
		if as == bs {
			return false
		}
		if ascending {
			return as < bs
		}
		return as > bs
	})
}
