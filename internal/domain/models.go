// internal/domain/models.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a purchased item held for resale. QuantityOnHand is
// decremented by the reconciliation layer when a linked sale is recorded;
// it is floored at zero and the row is never auto-deleted.
type InventoryItem struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OwnerID        uuid.UUID  `json:"owner_id" db:"owner_id"`
	Title          string     `json:"title" db:"title"`
	Vendor         string     `json:"vendor" db:"vendor"`
	DepartmentID   *uuid.UUID `json:"department_id" db:"department_id"`
	CategoryID     *uuid.UUID `json:"category_id" db:"category_id"`
	SubcategoryID  *uuid.UUID `json:"subcategory_id" db:"subcategory_id"`
	PurchasePrice  float64    `json:"purchase_price" db:"purchase_price"`
	PurchaseDate   *time.Time `json:"purchase_date" db:"purchase_date"`
	QuantityOnHand int        `json:"quantity_on_hand" db:"quantity_on_hand"`
	ReceiptPath    string     `json:"receipt_path" db:"receipt_path"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// SaleRecord is one completed sale. ItemTitle is free text and may also
// reference an InventoryItem through InventoryID.
type SaleRecord struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	OwnerID         uuid.UUID  `json:"owner_id" db:"owner_id"`
	ItemTitle       string     `json:"item_title" db:"item_title"`
	SalePrice       float64    `json:"sale_price" db:"sale_price"`
	ShippingCost    float64    `json:"shipping_cost" db:"shipping_cost"`
	TransactionFees float64    `json:"transaction_fees" db:"transaction_fees"`
	Platform        Platform   `json:"platform" db:"platform"`
	SaleDate        time.Time  `json:"sale_date" db:"sale_date"`
	PurchasePrice   float64    `json:"purchase_price" db:"purchase_price"`
	PurchaseDate    *time.Time `json:"purchase_date" db:"purchase_date"`
	InventoryID     *uuid.UUID `json:"inventory_id" db:"inventory_id"`
	ReceiptPath     string     `json:"receipt_path" db:"receipt_path"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Profit is the per-sale profit: sale price net of purchase price,
// shipping and transaction fees.
func (s SaleRecord) Profit() float64 {
	return s.SalePrice - s.PurchasePrice - s.ShippingCost - s.TransactionFees
}

// RefundRecord is money returned to a buyer. SaleID is optional; when set,
// display-only provenance is hydrated from the sale and, transitively, from
// the best-matching inventory row.
type RefundRecord struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	ItemLabel   string     `json:"item_label" db:"item_label"`
	Amount      float64    `json:"amount" db:"amount"`
	RefundDate  time.Time  `json:"refund_date" db:"refund_date"`
	SaleID      *uuid.UUID `json:"sale_id" db:"sale_id"`
	ReceiptPath string     `json:"receipt_path" db:"receipt_path"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// ExpenseRecord is an operating expense.
type ExpenseRecord struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	OwnerID       uuid.UUID  `json:"owner_id" db:"owner_id"`
	LedgerAccount GLAccount  `json:"ledger_account" db:"ledger_account"`
	Vendor        string     `json:"vendor" db:"vendor"`
	Description   string     `json:"description" db:"description"`
	Amount        float64    `json:"amount" db:"amount"`
	Date          time.Time  `json:"date" db:"date"`
	BankAccount   string     `json:"bank_account" db:"bank_account"`
	SaleID        *uuid.UUID `json:"sale_id" db:"sale_id"`
	ReceiptPath   string     `json:"receipt_path" db:"receipt_path"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// RebateRecord is a vendor rebate: a reduction of operating expense,
// never recorded as income.
type RebateRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	Vendor      string    `json:"vendor" db:"vendor"`
	Description string    `json:"description" db:"description"`
	Amount      float64   `json:"amount" db:"amount"`
	Date        time.Time `json:"date" db:"date"`
	BankAccount string    `json:"bank_account" db:"bank_account"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SourceType identifies which record stream a ledger row came from.
type SourceType string

const (
	SourceInventory SourceType = "inventory"
	SourceSale      SourceType = "sale"
	SourceRefund    SourceType = "refund"
	SourceExpense   SourceType = "expense"
	SourceRebate    SourceType = "rebate"
)

// LedgerRow is a derived projection of one source record for unified
// display. It is produced fresh on every query and never persisted.
// Amounts carry positive magnitude; the consumer applies sign by source
// type. Absent fields are empty strings, never null.
type LedgerRow struct {
	ID            uuid.UUID  `json:"id"`
	SourceType    SourceType `json:"source_type"`
	Date          time.Time  `json:"date"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description"`
	Vendor        string     `json:"vendor"`
	Platform      string     `json:"platform"`
	LedgerAccount string     `json:"ledger_account"`
	BankAccount   string     `json:"bank_account"`
	RelatedID     *uuid.UUID `json:"related_id"`
}

// MonthlyBucket is one calendar month's aggregated totals. Month is
// rendered "M/YYYY". Buckets with no activity are present with all zeros.
type MonthlyBucket struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	OpEx     float64 `json:"op_ex"`
	COGS     float64 `json:"cogs"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
}

// YearSeries is the 12-bucket reporting series plus totals. Total margin is
// recomputed from the summed fields, not averaged across monthly margins.
type YearSeries struct {
	Year    int             `json:"year"`
	Buckets []MonthlyBucket `json:"buckets"`
	Totals  MonthlyBucket   `json:"totals"`
}

// OwnerScope tags a taxonomy row as shared or owned by one actor. Shared
// rows are visible to everyone; personal rows only to their owner. The tag
// is explicit so "shared" never hides behind a nullable owner column.
type OwnerScope struct {
	Shared bool      `json:"shared"`
	Owner  uuid.UUID `json:"owner,omitempty"`
}

// SharedScope is the scope of rows visible to every actor.
func SharedScope() OwnerScope { return OwnerScope{Shared: true} }

// PersonalScope is the scope of rows owned by a single actor.
func PersonalScope(owner uuid.UUID) OwnerScope { return OwnerScope{Owner: owner} }

// TaxonomyLevel addresses one tier of the department/category/subcategory
// hierarchy.
type TaxonomyLevel int

const (
	LevelDepartment TaxonomyLevel = iota
	LevelCategory
	LevelSubcategory
)

func (l TaxonomyLevel) String() string {
	switch l {
	case LevelDepartment:
		return "department"
	case LevelCategory:
		return "category"
	case LevelSubcategory:
		return "subcategory"
	default:
		return "unknown"
	}
}

// RequiresParent reports whether rows at this level must name a parent.
func (l TaxonomyLevel) RequiresParent() bool { return l != LevelDepartment }

// TaxonomyNode is one row of the hierarchy. ParentID is nil for departments.
// Name is unique case-insensitively within (level, parent) across the shared
// rows plus any one actor's personal rows.
type TaxonomyNode struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Level     TaxonomyLevel `json:"level" db:"-"`
	ParentID  *uuid.UUID    `json:"parent_id" db:"parent_id"`
	Name      string        `json:"name" db:"name"`
	Scope     OwnerScope    `json:"scope" db:"-"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// SalePlatform is a marketplace name. Default rows are shared; user-owned
// rows belong to one actor. Names are unique case-insensitively across both.
type SalePlatform struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	IsDefault bool       `json:"is_default" db:"is_default"`
	OwnerID   *uuid.UUID `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Grouping is a persisted department/category/subcategory triple used for
// analytics groupings; names are joined in at read time.
type Grouping struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	DepartmentID  uuid.UUID `json:"department_id" db:"department_id"`
	CategoryID    uuid.UUID `json:"category_id" db:"category_id"`
	SubcategoryID uuid.UUID `json:"subcategory_id" db:"subcategory_id"`
	Department    string    `json:"department" db:"department"`
	Category      string    `json:"category" db:"category"`
	Subcategory   string    `json:"subcategory" db:"subcategory"`
}

// RefundProvenance is the read-only detail projection shown when a refund
// is linked to a sale. Inventory-derived fields are nil when no inventory
// row matches the sale's title; that is not an error.
type RefundProvenance struct {
	SaleDate      *time.Time `json:"sale_date"`
	SalePrice     *float64   `json:"sale_price"`
	Platform      string     `json:"platform"`
	Vendor        string     `json:"vendor"`
	PurchasePrice *float64   `json:"purchase_price"`
	PurchaseDate  *time.Time `json:"purchase_date"`
}
