// internal/reconcile/reconcile.go
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/rs/zerolog/log"
)

// Reconciler applies the cross-record side effects of sale and refund
// creation. Both are best-effort: the primary record is already persisted
// by the time these run, and there is no cross-record transaction to roll
// back, so failures are reported rather than undone.
type Reconciler struct {
	inventory repository.InventoryRepository
}

func NewReconciler(inventory repository.InventoryRepository) *Reconciler {
	return &Reconciler{inventory: inventory}
}

// SaleRecorded decrements the linked inventory item's quantity, floored at
// zero. The read happens immediately before the write to shrink the
// lost-update window; without store-side locking a small race remains and
// is accepted.
func (r *Reconciler) SaleRecorded(ctx context.Context, actor uuid.UUID, sale domain.SaleRecord) error {
	if sale.InventoryID == nil {
		return nil
	}

	item, err := r.inventory.GetInventory(ctx, actor, *sale.InventoryID)
	if err != nil {
		return fmt.Errorf("inventory decrement for sale %s: %w", sale.ID, err)
	}

	qty := item.QuantityOnHand - 1
	if qty < 0 {
		qty = 0
	}
	if err := r.inventory.UpdateInventoryQuantity(ctx, actor, item.ID, qty); err != nil {
		return fmt.Errorf("inventory decrement for sale %s: %w", sale.ID, err)
	}

	log.Debug().
		Str("sale_id", sale.ID.String()).
		Str("inventory_id", item.ID.String()).
		Int("quantity", qty).
		Msg("inventory quantity decremented")
	return nil
}

// RefundProvenance projects the read-only detail fields shown when a
// refund is linked to a sale. Platform, sale price and sale date come from
// the sale itself; vendor and purchase details come from the best-matching
// inventory row by title. This is an approximate, title-based join: zero
// matches leaves those fields blank, and a failed lookup degrades to the
// sale-only projection.
func (r *Reconciler) RefundProvenance(ctx context.Context, actor uuid.UUID, sale domain.SaleRecord) domain.RefundProvenance {
	saleDate := sale.SaleDate
	salePrice := sale.SalePrice
	prov := domain.RefundProvenance{
		SaleDate:  &saleDate,
		SalePrice: &salePrice,
		Platform:  string(sale.Platform),
	}

	title := strings.TrimSpace(sale.ItemTitle)
	if title == "" {
		return prov
	}

	items, err := r.inventory.FindInventoryByTitle(ctx, actor, title)
	if err != nil {
		log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("refund provenance inventory lookup failed")
		return prov
	}
	match, ok := bestInventoryMatch(items, sale)
	if !ok {
		return prov
	}

	prov.Vendor = match.Vendor
	price := match.PurchasePrice
	prov.PurchasePrice = &price
	if match.PurchaseDate != nil {
		d := *match.PurchaseDate
		prov.PurchaseDate = &d
	}
	return prov
}

// bestInventoryMatch picks the most recent row whose purchase date is on or
// before the sale date, falling back to the most recent row overall. Rows
// arrive ordered by purchase date descending, nulls last.
func bestInventoryMatch(items []domain.InventoryItem, sale domain.SaleRecord) (domain.InventoryItem, bool) {
	if len(items) == 0 {
		return domain.InventoryItem{}, false
	}
	for _, item := range items {
		if item.PurchaseDate != nil && !item.PurchaseDate.After(sale.SaleDate) {
			return item, true
		}
	}
	return items[0], true
}
