package reconcile

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventoryRepo struct {
	items  map[uuid.UUID]domain.InventoryItem
	getErr error
	updErr error
}

func newFakeInventoryRepo(items ...domain.InventoryItem) *fakeInventoryRepo {
	f := &fakeInventoryRepo{items: make(map[uuid.UUID]domain.InventoryItem)}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeInventoryRepo) GetInventory(_ context.Context, _ uuid.UUID, id uuid.UUID) (domain.InventoryItem, error) {
	if f.getErr != nil {
		return domain.InventoryItem{}, f.getErr
	}
	item, ok := f.items[id]
	if !ok {
		return domain.InventoryItem{}, domain.ErrNotFound
	}
	return item, nil
}

func (f *fakeInventoryRepo) UpdateInventoryQuantity(_ context.Context, _ uuid.UUID, id uuid.UUID, quantity int) error {
	if f.updErr != nil {
		return f.updErr
	}
	item, ok := f.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.QuantityOnHand = quantity
	f.items[id] = item
	return nil
}

func (f *fakeInventoryRepo) FindInventoryByTitle(_ context.Context, _ uuid.UUID, title string) ([]domain.InventoryItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []domain.InventoryItem
	for _, item := range f.items {
		if strings.EqualFold(strings.TrimSpace(item.Title), strings.TrimSpace(title)) {
			out = append(out, item)
		}
	}
	// purchase date descending, nulls last
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].PurchaseDate, out[j].PurchaseDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestSaleRecordedDecrementsQuantity(t *testing.T) {
	item := domain.InventoryItem{ID: uuid.New(), Title: "camera", QuantityOnHand: 3}
	repo := newFakeInventoryRepo(item)
	r := NewReconciler(repo)
	actor := uuid.New()

	sale := domain.SaleRecord{ID: uuid.New(), InventoryID: &item.ID}
	require.NoError(t, r.SaleRecorded(context.Background(), actor, sale))
	assert.Equal(t, 2, repo.items[item.ID].QuantityOnHand)
}

func TestSaleRecordedFloorsAtZero(t *testing.T) {
	item := domain.InventoryItem{ID: uuid.New(), Title: "camera", QuantityOnHand: 1}
	repo := newFakeInventoryRepo(item)
	r := NewReconciler(repo)
	actor := uuid.New()
	sale := domain.SaleRecord{ID: uuid.New(), InventoryID: &item.ID}

	// Recording the same sale twice must not push the quantity negative.
	require.NoError(t, r.SaleRecorded(context.Background(), actor, sale))
	require.NoError(t, r.SaleRecorded(context.Background(), actor, sale))
	assert.Equal(t, 0, repo.items[item.ID].QuantityOnHand)
}

func TestSaleRecordedWithoutLinkIsNoop(t *testing.T) {
	repo := newFakeInventoryRepo()
	r := NewReconciler(repo)

	require.NoError(t, r.SaleRecorded(context.Background(), uuid.New(), domain.SaleRecord{ID: uuid.New()}))
}

func TestSaleRecordedReportsFailure(t *testing.T) {
	item := domain.InventoryItem{ID: uuid.New(), QuantityOnHand: 2}
	repo := newFakeInventoryRepo(item)
	repo.updErr = domain.ErrStoreUnavailable
	r := NewReconciler(repo)

	sale := domain.SaleRecord{ID: uuid.New(), InventoryID: &item.ID}
	err := r.SaleRecorded(context.Background(), uuid.New(), sale)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	// Quantity untouched on failure.
	assert.Equal(t, 2, repo.items[item.ID].QuantityOnHand)
}

func TestRefundProvenancePrefersRowOnOrBeforeSaleDate(t *testing.T) {
	older := domain.InventoryItem{
		ID: uuid.New(), Title: "Vintage Clock", Vendor: "Estate Sale Co",
		PurchasePrice: 12.50, PurchaseDate: datePtr(2025, time.February, 1),
	}
	newer := domain.InventoryItem{
		ID: uuid.New(), Title: "vintage clock", Vendor: "Flea Market",
		PurchasePrice: 20, PurchaseDate: datePtr(2025, time.June, 1),
	}
	repo := newFakeInventoryRepo(older, newer)
	r := NewReconciler(repo)

	sale := domain.SaleRecord{
		ID:        uuid.New(),
		ItemTitle: " Vintage Clock ",
		SalePrice: 45,
		Platform:  domain.PlatformEbay,
		SaleDate:  date(2025, time.March, 10),
	}
	prov := r.RefundProvenance(context.Background(), uuid.New(), sale)

	assert.Equal(t, "Estate Sale Co", prov.Vendor)
	require.NotNil(t, prov.PurchasePrice)
	assert.InDelta(t, 12.50, *prov.PurchasePrice, 1e-9)
	require.NotNil(t, prov.PurchaseDate)
	assert.True(t, prov.PurchaseDate.Equal(date(2025, time.February, 1)))
	assert.Equal(t, "ebay", prov.Platform)
	require.NotNil(t, prov.SalePrice)
	assert.InDelta(t, 45, *prov.SalePrice, 1e-9)
}

func TestRefundProvenanceFallsBackToMostRecent(t *testing.T) {
	// Every purchase date is after the sale date, so the most recent row wins.
	item := domain.InventoryItem{
		ID: uuid.New(), Title: "Record Player", Vendor: "Thrift Shop",
		PurchasePrice: 30, PurchaseDate: datePtr(2025, time.August, 1),
	}
	repo := newFakeInventoryRepo(item)
	r := NewReconciler(repo)

	sale := domain.SaleRecord{ID: uuid.New(), ItemTitle: "record player", SaleDate: date(2025, time.January, 15)}
	prov := r.RefundProvenance(context.Background(), uuid.New(), sale)

	assert.Equal(t, "Thrift Shop", prov.Vendor)
}

func TestRefundProvenanceZeroMatchesLeavesBlanks(t *testing.T) {
	repo := newFakeInventoryRepo()
	r := NewReconciler(repo)

	sale := domain.SaleRecord{
		ID: uuid.New(), ItemTitle: "unknown item",
		SalePrice: 10, Platform: domain.PlatformEtsy, SaleDate: date(2025, time.May, 5),
	}
	prov := r.RefundProvenance(context.Background(), uuid.New(), sale)

	assert.Empty(t, prov.Vendor)
	assert.Nil(t, prov.PurchasePrice)
	assert.Nil(t, prov.PurchaseDate)
	// Sale-derived fields still present.
	require.NotNil(t, prov.SaleDate)
	assert.Equal(t, "etsy", prov.Platform)
}

func TestRefundProvenanceLookupFailureDegrades(t *testing.T) {
	repo := newFakeInventoryRepo()
	repo.getErr = errors.New("boom")
	r := NewReconciler(repo)

	sale := domain.SaleRecord{ID: uuid.New(), ItemTitle: "anything", SalePrice: 9}
	prov := r.RefundProvenance(context.Background(), uuid.New(), sale)

	require.NotNil(t, prov.SalePrice)
	assert.Empty(t, prov.Vendor)
}
