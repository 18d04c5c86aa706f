package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreams struct {
	inventory []domain.InventoryItem
	sales     []domain.SaleRecord
	refunds   []domain.RefundRecord
	expenses  []domain.ExpenseRecord
	rebates   []domain.RebateRecord
	err       error
}

func (f *fakeStreams) ListInventory(context.Context, repository.RangeQuery) ([]domain.InventoryItem, error) {
	return f.inventory, f.err
}

func (f *fakeStreams) ListSales(context.Context, repository.RangeQuery) ([]domain.SaleRecord, error) {
	return f.sales, f.err
}

func (f *fakeStreams) ListRefunds(context.Context, repository.RangeQuery) ([]domain.RefundRecord, error) {
	return f.refunds, f.err
}

func (f *fakeStreams) ListExpenses(context.Context, repository.RangeQuery) ([]domain.ExpenseRecord, error) {
	return f.expenses, f.err
}

func (f *fakeStreams) ListRebates(context.Context, repository.RangeQuery) ([]domain.RebateRecord, error) {
	return f.rebates, f.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func build(t *testing.T, streams *fakeStreams, year int) domain.YearSeries {
	t.Helper()
	r := NewReporter(streams)
	series, err := r.BuildYearSeries(context.Background(), uuid.New(), year)
	require.NoError(t, err)
	return series
}

func TestYearSeriesAlwaysTwelveBuckets(t *testing.T) {
	series := build(t, &fakeStreams{}, 2025)

	require.Len(t, series.Buckets, 12)
	assert.Equal(t, "1/2025", series.Buckets[0].Month)
	assert.Equal(t, "12/2025", series.Buckets[11].Month)
	for _, b := range series.Buckets {
		assert.Zero(t, b.Income)
		assert.Zero(t, b.Profit)
		assert.Zero(t, b.Margin)
	}
}

func TestYearSeriesMarchExample(t *testing.T) {
	streams := &fakeStreams{
		sales: []domain.SaleRecord{
			{ID: uuid.New(), SalePrice: 100, SaleDate: day(2025, time.March, 5)},
		},
		refunds: []domain.RefundRecord{
			{ID: uuid.New(), Amount: 20, RefundDate: day(2025, time.March, 12)},
		},
		expenses: []domain.ExpenseRecord{
			{ID: uuid.New(), Amount: 30, Date: day(2025, time.March, 20)},
		},
	}
	series := build(t, streams, 2025)

	march := series.Buckets[2]
	assert.Equal(t, "3/2025", march.Month)
	assert.InDelta(t, 80, march.Income, 1e-9)
	assert.InDelta(t, 30, march.OpEx, 1e-9)
	assert.Zero(t, march.COGS)
	assert.InDelta(t, 30, march.Expenses, 1e-9)
	assert.InDelta(t, 50, march.Profit, 1e-9)
	assert.InDelta(t, 0.625, march.Margin, 1e-9)

	for i, b := range series.Buckets {
		if i == 2 {
			continue
		}
		assert.Zero(t, b.Income, b.Month)
		assert.Zero(t, b.Expenses, b.Month)
	}

	assert.InDelta(t, 80, series.Totals.Income, 1e-9)
	assert.InDelta(t, 50, series.Totals.Profit, 1e-9)
	assert.InDelta(t, 0.625, series.Totals.Margin, 1e-9)
}

func TestInventoryPurchasesLandInCOGS(t *testing.T) {
	streams := &fakeStreams{
		inventory: []domain.InventoryItem{
			{ID: uuid.New(), PurchasePrice: 40, PurchaseDate: dayPtr(2025, time.June, 2)},
			{ID: uuid.New(), PurchasePrice: 10}, // no purchase date, skipped
		},
		sales: []domain.SaleRecord{
			{ID: uuid.New(), SalePrice: 100, SaleDate: day(2025, time.June, 10)},
		},
	}
	series := build(t, streams, 2025)

	june := series.Buckets[5]
	assert.InDelta(t, 40, june.COGS, 1e-9)
	assert.InDelta(t, 40, june.Expenses, 1e-9)
	assert.InDelta(t, 60, june.Profit, 1e-9)
}

func TestRebatesReduceOpExAndMayGoNegative(t *testing.T) {
	streams := &fakeStreams{
		rebates: []domain.RebateRecord{
			{ID: uuid.New(), Amount: 15, Date: day(2025, time.February, 3)},
		},
	}
	series := build(t, streams, 2025)

	feb := series.Buckets[1]
	assert.InDelta(t, -15, feb.OpEx, 1e-9)
	assert.InDelta(t, 15, feb.Profit, 1e-9)
	// No income, so margin is pinned at zero even with positive profit.
	assert.Zero(t, feb.Margin)
}

func TestRefundsCanDriveIncomeNegative(t *testing.T) {
	streams := &fakeStreams{
		refunds: []domain.RefundRecord{
			{ID: uuid.New(), Amount: 50, RefundDate: day(2025, time.April, 1)},
		},
	}
	series := build(t, streams, 2025)

	april := series.Buckets[3]
	assert.InDelta(t, -50, april.Income, 1e-9)
	assert.InDelta(t, -50, april.Profit, 1e-9)
	assert.InDelta(t, 1, april.Margin, 1e-9)
}

func TestRowsOutsideTargetYearAreSkipped(t *testing.T) {
	streams := &fakeStreams{
		sales: []domain.SaleRecord{
			{ID: uuid.New(), SalePrice: 100, SaleDate: day(2024, time.December, 31)},
			{ID: uuid.New(), SalePrice: 25, SaleDate: day(2025, time.January, 1)},
		},
	}
	series := build(t, streams, 2025)

	assert.InDelta(t, 25, series.Totals.Income, 1e-9)
}

func TestTotalsMarginRecomputedNotAveraged(t *testing.T) {
	streams := &fakeStreams{
		sales: []domain.SaleRecord{
			{ID: uuid.New(), SalePrice: 100, SaleDate: day(2025, time.January, 5)},
			{ID: uuid.New(), SalePrice: 300, SaleDate: day(2025, time.February, 5)},
		},
		expenses: []domain.ExpenseRecord{
			{ID: uuid.New(), Amount: 50, Date: day(2025, time.January, 6)},
		},
	}
	series := build(t, streams, 2025)

	// Jan margin 0.5, Feb margin 1.0; the naive average would be 0.75.
	assert.InDelta(t, 0.5, series.Buckets[0].Margin, 1e-9)
	assert.InDelta(t, 1.0, series.Buckets[1].Margin, 1e-9)
	assert.InDelta(t, 350.0/400.0, series.Totals.Margin, 1e-9)
}

func TestStreamFailureFailsTheSeries(t *testing.T) {
	streams := &fakeStreams{err: errors.New("boom")}
	r := NewReporter(streams)

	_, err := r.BuildYearSeries(context.Background(), uuid.New(), 2025)
	assert.Error(t, err)
}
