// internal/ledger/filter.go
package ledger

import (
	"strings"

	"github.com/resaleworks/bookkeeper/internal/domain"
)

// Tab scopes the view to one source type. Rebates have no tab of their own
// and surface only under TabAll.
type Tab string

const (
	TabAll       Tab = "all"
	TabInventory Tab = "inventory"
	TabSales     Tab = "sales"
	TabRefunds   Tab = "refunds"
	TabExpenses  Tab = "expenses"
)

var tabSource = map[Tab]domain.SourceType{
	TabInventory: domain.SourceInventory,
	TabSales:     domain.SourceSale,
	TabRefunds:   domain.SourceRefund,
	TabExpenses:  domain.SourceExpense,
}

func validTab(tab Tab) bool {
	if tab == TabAll {
		return true
	}
	_, ok := tabSource[tab]
	return ok
}

func inTab(row domain.LedgerRow, tab Tab) bool {
	if tab == TabAll {
		return true
	}
	return row.SourceType == tabSource[tab]
}

// Filters are combined with AND. Search is a case-insensitive substring
// match over the row's text fields; Platform is an exact match.
type Filters struct {
	Search    string
	AmountMin *float64
	AmountMax *float64
	Platform  string
}

func (f Filters) match(row domain.LedgerRow) bool {
	if f.AmountMin != nil && row.Amount < *f.AmountMin {
		return false
	}
	if f.AmountMax != nil && row.Amount > *f.AmountMax {
		return false
	}
	if f.Platform != "" && row.Platform != f.Platform {
		return false
	}
	if needle := strings.TrimSpace(f.Search); needle != "" {
		haystack := strings.ToLower(strings.Join([]string{
			row.Description,
			row.Vendor,
			row.Platform,
			row.BankAccount,
			row.LedgerAccount,
			string(row.SourceType),
		}, "\x00"))
		if !strings.Contains(haystack, strings.ToLower(needle)) {
			return false
		}
	}
	return true
}

func applyFilters(rows []domain.LedgerRow, tab Tab, f Filters) []domain.LedgerRow {
	out := make([]domain.LedgerRow, 0, len(rows))
	for _, row := range rows {
		if inTab(row, tab) && f.match(row) {
			out = append(out, row)
		}
	}
	return out
}
