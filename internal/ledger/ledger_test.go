package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
)

// fakeStore backs both the stream reads and the record writes for view
// tests. ListInventory can be gated once to hold a load in flight while a
// newer one overtakes it.
type fakeStore struct {
	mu        sync.Mutex
	inventory []domain.InventoryItem
	sales     []domain.SaleRecord
	refunds   []domain.RefundRecord
	expenses  []domain.ExpenseRecord
	rebates   []domain.RebateRecord

	updateErr error
	deleteErr error
	updates   int

	gate    chan struct{}
	started chan struct{}
}

func (f *fakeStore) waitGate() {
	f.mu.Lock()
	gate, started := f.gate, f.started
	f.gate, f.started = nil, nil
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
}

func inWindow(t time.Time, q repository.RangeQuery) bool {
	return !t.Before(q.Start) && !t.After(q.End)
}

func (f *fakeStore) ListInventory(_ context.Context, q repository.RangeQuery) ([]domain.InventoryItem, error) {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InventoryItem
	for _, r := range f.inventory {
		if r.PurchaseDate != nil && inWindow(*r.PurchaseDate, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSales(_ context.Context, q repository.RangeQuery) ([]domain.SaleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SaleRecord
	for _, r := range f.sales {
		if inWindow(r.SaleDate, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRefunds(_ context.Context, q repository.RangeQuery) ([]domain.RefundRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RefundRecord
	for _, r := range f.refunds {
		if inWindow(r.RefundDate, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListExpenses(_ context.Context, q repository.RangeQuery) ([]domain.ExpenseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ExpenseRecord
	for _, r := range f.expenses {
		if inWindow(r.Date, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRebates(_ context.Context, q repository.RangeQuery) ([]domain.RebateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RebateRecord
	for _, r := range f.rebates {
		if inWindow(r.Date, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, _ uuid.UUID, src domain.SourceType, id uuid.UUID, patch repository.RowPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	switch src {
	case domain.SourceSale:
		for i := range f.sales {
			if f.sales[i].ID == id {
				if patch.Amount != nil {
					f.sales[i].SalePrice = *patch.Amount
				}
				if patch.Description != nil {
					f.sales[i].ItemTitle = *patch.Description
				}
				if patch.Date != nil {
					f.sales[i].SaleDate = *patch.Date
				}
				if patch.Platform != nil {
					f.sales[i].Platform = *patch.Platform
				}
				return nil
			}
		}
	case domain.SourceExpense:
		for i := range f.expenses {
			if f.expenses[i].ID == id {
				if patch.Amount != nil {
					f.expenses[i].Amount = *patch.Amount
				}
				if patch.Description != nil {
					f.expenses[i].Description = *patch.Description
				}
				if patch.Vendor != nil {
					f.expenses[i].Vendor = *patch.Vendor
				}
				if patch.Date != nil {
					f.expenses[i].Date = *patch.Date
				}
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, _ uuid.UUID, src domain.SourceType, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	switch src {
	case domain.SourceSale:
		for i := range f.sales {
			if f.sales[i].ID == id {
				f.sales = append(f.sales[:i], f.sales[i+1:]...)
				return nil
			}
		}
	case domain.SourceExpense:
		for i := range f.expenses {
			if f.expenses[i].ID == id {
				f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func f64(v float64) *float64 { return &v }

func sale(title string, price float64, platform domain.Platform, date time.Time) domain.SaleRecord {
	return domain.SaleRecord{
		ID: uuid.New(), ItemTitle: title, SalePrice: price,
		Platform: platform, SaleDate: date,
	}
}

func expense(desc, vendor string, amount float64, date time.Time) domain.ExpenseRecord {
	return domain.ExpenseRecord{
		ID: uuid.New(), Description: desc, Vendor: vendor,
		Amount: amount, Date: date, LedgerAccount: domain.GLOther,
	}
}
