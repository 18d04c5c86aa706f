// internal/report/monthly.go
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// fetchLimit caps each stream read for a reporting year.
const fetchLimit = 5000

// Reporter builds the monthly profit-and-loss series. It reads through the
// same stream interface as the ledger engine but keeps its own queries;
// the two never share fetched rows.
type Reporter struct {
	reader repository.StreamReader
	now    func() time.Time
}

func NewReporter(reader repository.StreamReader) *Reporter {
	return &Reporter{reader: reader, now: time.Now}
}

// BuildYearSeries aggregates one calendar year into exactly twelve monthly
// buckets, January through December, plus recomputed totals. Months with no
// activity are present with all zeros, and every derived field may go
// negative; refunds and rebates are subtracted without clamping.
//
// Accumulation rules per source:
//
//	sale      income += sale price
//	refund    income -= amount
//	expense   opEx   += amount
//	rebate    opEx   -= amount
//	inventory cogs   += purchase price
//
// Expenses is opEx+cogs, profit is income-expenses, and margin is
// profit/income with a zero-income month reporting margin exactly 0.
func (r *Reporter) BuildYearSeries(ctx context.Context, actor uuid.UUID, year int) (domain.YearSeries, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	if now := r.now().UTC(); now.Before(end) {
		end = now
	}
	q := repository.RangeQuery{Actor: actor, Start: start, End: end, Limit: fetchLimit}

	var (
		inventory []domain.InventoryItem
		sales     []domain.SaleRecord
		refunds   []domain.RefundRecord
		expenses  []domain.ExpenseRecord
		rebates   []domain.RebateRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		inventory, err = r.reader.ListInventory(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		sales, err = r.reader.ListSales(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		refunds, err = r.reader.ListRefunds(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = r.reader.ListExpenses(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		rebates, err = r.reader.ListRebates(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.YearSeries{}, fmt.Errorf("year series %d: %w", year, err)
	}

	series := domain.YearSeries{Year: year, Buckets: make([]domain.MonthlyBucket, 12)}
	for i := range series.Buckets {
		series.Buckets[i].Month = fmt.Sprintf("%d/%d", i+1, year)
	}

	bucket := func(t time.Time) *domain.MonthlyBucket {
		if t.Year() != year {
			return nil
		}
		return &series.Buckets[int(t.Month())-1]
	}

	for _, s := range sales {
		if b := bucket(s.SaleDate); b != nil {
			b.Income += s.SalePrice
		}
	}
	for _, rf := range refunds {
		if b := bucket(rf.RefundDate); b != nil {
			b.Income -= rf.Amount
		}
	}
	for _, e := range expenses {
		if b := bucket(e.Date); b != nil {
			b.OpEx += e.Amount
		}
	}
	for _, rb := range rebates {
		if b := bucket(rb.Date); b != nil {
			b.OpEx -= rb.Amount
		}
	}
	for _, item := range inventory {
		if item.PurchaseDate == nil {
			continue
		}
		if b := bucket(*item.PurchaseDate); b != nil {
			b.COGS += item.PurchasePrice
		}
	}

	for i := range series.Buckets {
		finalize(&series.Buckets[i])
		series.Totals.Income += series.Buckets[i].Income
		series.Totals.OpEx += series.Buckets[i].OpEx
		series.Totals.COGS += series.Buckets[i].COGS
	}
	series.Totals.Month = fmt.Sprintf("%d", year)
	finalize(&series.Totals)

	log.Debug().Int("year", year).Float64("profit", series.Totals.Profit).Msg("year series built")
	return series, nil
}

// finalize derives the dependent fields from the accumulated ones. Margin
// on zero income is exactly 0, never NaN or infinity.
func finalize(b *domain.MonthlyBucket) {
	b.Expenses = b.OpEx + b.COGS
	b.Profit = b.Income - b.Expenses
	if b.Income == 0 {
		b.Margin = 0
	} else {
		b.Margin = b.Profit / b.Income
	}
}
