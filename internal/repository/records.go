// internal/repository/records.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
)

// RangeQuery constrains a stream read to an inclusive date window. Limit
// caps the row count; zero means the caller's default applies.
type RangeQuery struct {
	Actor     uuid.UUID
	Start     time.Time
	End       time.Time
	Limit     int
	Ascending bool
}

// RowPatch carries the editable ledger columns back to a source record.
// Nil fields are untouched; fields the source table lacks are ignored.
type RowPatch struct {
	Date          *time.Time
	Amount        *float64
	Description   *string
	Vendor        *string
	Platform      *domain.Platform
	LedgerAccount *domain.GLAccount
	BankAccount   *string
}

// Empty reports whether the patch would change nothing.
func (p RowPatch) Empty() bool {
	return p.Date == nil && p.Amount == nil && p.Description == nil &&
		p.Vendor == nil && p.Platform == nil && p.LedgerAccount == nil &&
		p.BankAccount == nil
}

// StreamReader reads the five record streams for a date window. The ledger
// merge engine and the monthly aggregation engine both pull through this;
// they never share a cache and re-query on every range change.
type StreamReader interface {
	ListInventory(ctx context.Context, q RangeQuery) ([]domain.InventoryItem, error)
	ListSales(ctx context.Context, q RangeQuery) ([]domain.SaleRecord, error)
	ListRefunds(ctx context.Context, q RangeQuery) ([]domain.RefundRecord, error)
	ListExpenses(ctx context.Context, q RangeQuery) ([]domain.ExpenseRecord, error)
	ListRebates(ctx context.Context, q RangeQuery) ([]domain.RebateRecord, error)
}

// RecordWriter mutates individual source records by source type and
// original id. Update and Delete return domain.ErrNotFound when the target
// row no longer exists.
type RecordWriter interface {
	Update(ctx context.Context, actor uuid.UUID, src domain.SourceType, id uuid.UUID, patch RowPatch) error
	Delete(ctx context.Context, actor uuid.UUID, src domain.SourceType, id uuid.UUID) error
}

// InventoryRepository is the slice of the store the reconciliation layer
// needs: quantity read/write plus the title-based provenance lookup.
type InventoryRepository interface {
	GetInventory(ctx context.Context, actor, id uuid.UUID) (domain.InventoryItem, error)
	UpdateInventoryQuantity(ctx context.Context, actor, id uuid.UUID, quantity int) error
	// FindInventoryByTitle matches trimmed titles case-insensitively,
	// most recent purchase date first, nulls last.
	FindInventoryByTitle(ctx context.Context, actor uuid.UUID, title string) ([]domain.InventoryItem, error)
}

// RecordRepository is the full transactional-record surface used by the API
// handlers and CLIs.
type RecordRepository interface {
	StreamReader
	RecordWriter
	InventoryRepository

	GetSale(ctx context.Context, actor, id uuid.UUID) (domain.SaleRecord, error)

	InsertInventory(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	InsertSale(ctx context.Context, sale domain.SaleRecord) (domain.SaleRecord, error)
	InsertRefund(ctx context.Context, refund domain.RefundRecord) (domain.RefundRecord, error)
	InsertExpense(ctx context.Context, expense domain.ExpenseRecord) (domain.ExpenseRecord, error)
	InsertRebate(ctx context.Context, rebate domain.RebateRecord) (domain.RebateRecord, error)

	// SetReceiptPath attaches an uploaded receipt object to a record.
	SetReceiptPath(ctx context.Context, actor uuid.UUID, src domain.SourceType, id uuid.UUID, path string) error
}

// TaxonomyRepository backs the taxonomy resolver. Reads cover the shared
// rows plus the actor's personal rows; FindByName orders by name then
// created_at so repeated lookups resolve deterministically.
type TaxonomyRepository interface {
	FindByName(ctx context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID, name string) ([]domain.TaxonomyNode, error)
	ListNodes(ctx context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID) ([]domain.TaxonomyNode, error)
	// InsertNode returns domain.ErrConflict on a duplicate-key violation.
	InsertNode(ctx context.Context, node domain.TaxonomyNode) (domain.TaxonomyNode, error)
}

// PlatformRepository manages the sale-platform registry: shared defaults
// plus user-owned names, unique case-insensitively across both.
type PlatformRepository interface {
	ListPlatforms(ctx context.Context, actor uuid.UUID) ([]domain.SalePlatform, error)
	FindPlatformByName(ctx context.Context, actor uuid.UUID, name string) ([]domain.SalePlatform, error)
	InsertPlatform(ctx context.Context, p domain.SalePlatform) (domain.SalePlatform, error)
	RenamePlatform(ctx context.Context, actor, id uuid.UUID, name string) error
	DeletePlatform(ctx context.Context, actor, id uuid.UUID) error
}

// GroupingRepository persists analytics grouping triples, names joined at
// read time.
type GroupingRepository interface {
	ListGroupings(ctx context.Context, actor uuid.UUID) ([]domain.Grouping, error)
	InsertGrouping(ctx context.Context, g domain.Grouping) (domain.Grouping, error)
	UpdateGrouping(ctx context.Context, actor, id uuid.UUID, departmentID, categoryID, subcategoryID uuid.UUID) error
	DeleteGrouping(ctx context.Context, actor, id uuid.UUID) error
}
