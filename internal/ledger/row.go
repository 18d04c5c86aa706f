// internal/ledger/row.go
package ledger

import (
	"time"

	"github.com/resaleworks/bookkeeper/internal/domain"
)

// ColumnKey names one ledger column. Keys double as CSV header labels and
// sort/filter addresses.
type ColumnKey string

const (
	ColDate          ColumnKey = "date"
	ColSourceType    ColumnKey = "source_type"
	ColDescription   ColumnKey = "description"
	ColVendor        ColumnKey = "vendor"
	ColPlatform      ColumnKey = "platform"
	ColLedgerAccount ColumnKey = "ledger_account"
	ColBankAccount   ColumnKey = "bank_account"
	ColAmount        ColumnKey = "amount"
	ColRelatedID     ColumnKey = "related_id"
)

// Columns is the full column set in display order.
var Columns = []ColumnKey{
	ColDate, ColSourceType, ColDescription, ColVendor, ColPlatform,
	ColLedgerAccount, ColBankAccount, ColAmount, ColRelatedID,
}

// DefaultVisibleColumns hides the related-id plumbing column by default.
var DefaultVisibleColumns = []ColumnKey{
	ColDate, ColSourceType, ColDescription, ColVendor, ColPlatform,
	ColLedgerAccount, ColBankAccount, ColAmount,
}

func validColumn(key ColumnKey) bool {
	for _, c := range Columns {
		if c == key {
			return true
		}
	}
	return false
}

// Normalization: every source record becomes one LedgerRow. Fields a source
// lacks are empty strings so sort/filter stay uniform downstream.

func rowFromInventory(item domain.InventoryItem) domain.LedgerRow {
	var date time.Time
	if item.PurchaseDate != nil {
		date = *item.PurchaseDate
	}
	return domain.LedgerRow{
		ID:          item.ID,
		SourceType:  domain.SourceInventory,
		Date:        date,
		Amount:      item.PurchasePrice,
		Description: item.Title,
		Vendor:      item.Vendor,
	}
}

func rowFromSale(sale domain.SaleRecord) domain.LedgerRow {
	return domain.LedgerRow{
		ID:          sale.ID,
		SourceType:  domain.SourceSale,
		Date:        sale.SaleDate,
		Amount:      sale.SalePrice,
		Description: sale.ItemTitle,
		Platform:    string(sale.Platform),
		RelatedID:   sale.InventoryID,
	}
}

func rowFromRefund(refund domain.RefundRecord) domain.LedgerRow {
	return domain.LedgerRow{
		ID:          refund.ID,
		SourceType:  domain.SourceRefund,
		Date:        refund.RefundDate,
		Amount:      refund.Amount,
		Description: refund.ItemLabel,
		RelatedID:   refund.SaleID,
	}
}

func rowFromExpense(expense domain.ExpenseRecord) domain.LedgerRow {
	return domain.LedgerRow{
		ID:            expense.ID,
		SourceType:    domain.SourceExpense,
		Date:          expense.Date,
		Amount:        expense.Amount,
		Description:   expense.Description,
		Vendor:        expense.Vendor,
		LedgerAccount: string(expense.LedgerAccount),
		BankAccount:   expense.BankAccount,
		RelatedID:     expense.SaleID,
	}
}

func rowFromRebate(rebate domain.RebateRecord) domain.LedgerRow {
	return domain.LedgerRow{
		ID:          rebate.ID,
		SourceType:  domain.SourceRebate,
		Date:        rebate.Date,
		Amount:      rebate.Amount,
		Description: rebate.Description,
		Vendor:      rebate.Vendor,
		BankAccount: rebate.BankAccount,
	}
}
