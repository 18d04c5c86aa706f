package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCoversAllPagesAfterFilter(t *testing.T) {
	store := &fakeStore{}
	for d := 1; d <= 30; d++ {
		store.sales = append(store.sales, sale("widget", float64(d), domain.PlatformEbay, day(2025, time.March, d)))
	}
	v := loadedView(t, store)
	require.NoError(t, v.SetPageSize(10))
	v.SetFilters(Filters{AmountMin: f64(11)})

	var buf bytes.Buffer
	require.NoError(t, v.ExportCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	// Header plus the 20 filtered rows; pagination must not truncate.
	assert.Len(t, records, 21)
	assert.Equal(t, len(DefaultVisibleColumns), len(records[0]))
	assert.Equal(t, "date", records[0][0])
	assert.Equal(t, "amount", records[0][len(records[0])-1])
}

func TestExportRespectsVisibleColumnsAndSortOrder(t *testing.T) {
	store := &fakeStore{sales: []domain.SaleRecord{
		sale("cheap", 5, domain.PlatformEbay, day(2025, time.March, 1)),
		sale("dear", 50, domain.PlatformEbay, day(2025, time.March, 2)),
	}}
	v := loadedView(t, store)
	require.NoError(t, v.SetVisibleColumns([]ColumnKey{ColDescription, ColAmount}))
	require.NoError(t, v.SortBy(ColAmount))

	var buf bytes.Buffer
	require.NoError(t, v.ExportCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"description", "amount"}, records[0])
	assert.Equal(t, []string{"cheap", "5.00"}, records[1])
	assert.Equal(t, []string{"dear", "50.00"}, records[2])
}

func TestExportQuotesEmbeddedCommas(t *testing.T) {
	store := &fakeStore{sales: []domain.SaleRecord{
		sale(`jacket, wool, size "L"`, 25, domain.PlatformEtsy, day(2025, time.March, 1)),
	}}
	v := loadedView(t, store)

	var buf bytes.Buffer
	require.NoError(t, v.ExportCSV(&buf))

	assert.Contains(t, buf.String(), `"jacket, wool, size ""L"""`)

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `jacket, wool, size "L"`, records[1][2])
}

func TestExportFilename(t *testing.T) {
	v := newTestView(&fakeStore{})
	require.NoError(t, v.Load(context.Background(), day(2025, time.January, 1), day(2025, time.March, 31)))

	assert.Equal(t, "transactions_2025-01-01_to_2025-03-31.csv", v.ExportFilename())

	require.NoError(t, v.SetTab(TabExpenses))
	assert.Equal(t, "transactions_2025-01-01_to_2025-03-31_expenses.csv", v.ExportFilename())

	v.SetFilters(Filters{Platform: "Facebook Marketplace"})
	assert.Equal(t,
		"transactions_2025-01-01_to_2025-03-31_expenses_platform_facebook-marketplace.csv",
		v.ExportFilename())
}
