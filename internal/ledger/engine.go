// internal/ledger/engine.go
package ledger

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

// FetchLimit caps each of the five stream reads. Large accounts degrade to
// the most recent rows per stream rather than an unbounded pull.
const FetchLimit = 5000

// Engine fetches the five record streams for a date window and merges them
// into normalized ledger rows. Every call re-queries the store; rows are
// never cached between ranges.
type Engine struct {
	reader repository.StreamReader
}

func NewEngine(reader repository.StreamReader) *Engine {
	return &Engine{reader: reader}
}

// Load pulls all five streams concurrently for the inclusive window
// [start, end]. One failed stream fails the whole load; a partial merge is
// never returned.
func (e *Engine) Load(ctx context.Context, actor uuid.UUID, start, end time.Time) ([]domain.LedgerRow, error) {
	q := repository.RangeQuery{
		Actor: actor,
		Start: start,
		End:   end,
		Limit: FetchLimit,
	}

	var (
		inventory []domain.InventoryItem
		sales     []domain.SaleRecord
		refunds   []domain.RefundRecord
		expenses  []domain.ExpenseRecord
		rebates   []domain.RebateRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		inventory, err = e.reader.ListInventory(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		sales, err = e.reader.ListSales(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		refunds, err = e.reader.ListRefunds(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = e.reader.ListExpenses(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		rebates, err = e.reader.ListRebates(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ledger load [%s, %s]: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), err)
	}

	rows := make([]domain.LedgerRow, 0,
		len(inventory)+len(sales)+len(refunds)+len(expenses)+len(rebates))
	for _, item := range inventory {
		rows = append(rows, rowFromInventory(item))
	}
	for _, sale := range sales {
		rows = append(rows, rowFromSale(sale))
	}
	for _, refund := range refunds {
		rows = append(rows, rowFromRefund(refund))
	}
	for _, expense := range expenses {
		rows = append(rows, rowFromExpense(expense))
	}
	for _, rebate := range rebates {
		rows = append(rows, rowFromRebate(rebate))
	}

	log.Debug().
		Int("rows", len(rows)).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Msg("ledger streams merged")
	return rows, nil
}
