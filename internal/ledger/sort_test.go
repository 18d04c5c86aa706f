package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowWithVendor(vendor string) domain.LedgerRow {
	return domain.LedgerRow{ID: uuid.New(), SourceType: domain.SourceExpense, Vendor: vendor}
}

func TestSortAmountNumeric(t *testing.T) {
	rows := []domain.LedgerRow{
		{ID: uuid.New(), Amount: 100},
		{ID: uuid.New(), Amount: 9},
		{ID: uuid.New(), Amount: 20},
	}
	sortRows(rows, ColAmount, true)
	assert.InDelta(t, 9, rows[0].Amount, 1e-9)
	assert.InDelta(t, 100, rows[2].Amount, 1e-9)

	sortRows(rows, ColAmount, false)
	assert.InDelta(t, 100, rows[0].Amount, 1e-9)
	assert.InDelta(t, 9, rows[2].Amount, 1e-9)
}

func TestSortStringsCaseSensitive(t *testing.T) {
	rows := []domain.LedgerRow{
		rowWithVendor("apple"),
		rowWithVendor("Banana"),
		rowWithVendor("Apple"),
	}
	sortRows(rows, ColVendor, true)

	// Byte order: uppercase before lowercase.
	assert.Equal(t, "Apple", rows[0].Vendor)
	assert.Equal(t, "Banana", rows[1].Vendor)
	assert.Equal(t, "apple", rows[2].Vendor)
}

func TestSortMissingValuesLastInBothDirections(t *testing.T) {
	blank := rowWithVendor("")
	rows := []domain.LedgerRow{blank, rowWithVendor("Zed"), rowWithVendor("Amy")}

	sortRows(rows, ColVendor, true)
	require.Equal(t, "Amy", rows[0].Vendor)
	assert.Equal(t, blank.ID, rows[2].ID)

	sortRows(rows, ColVendor, false)
	require.Equal(t, "Zed", rows[0].Vendor)
	assert.Equal(t, blank.ID, rows[2].ID, "missing stays last when direction flips")
}

func TestSortReversalRoundTrips(t *testing.T) {
	rows := []domain.LedgerRow{
		rowWithVendor("b"), rowWithVendor(""), rowWithVendor("a"), rowWithVendor("c"),
	}
	sortRows(rows, ColVendor, true)
	asc := append([]domain.LedgerRow(nil), rows...)

	sortRows(rows, ColVendor, false)
	sortRows(rows, ColVendor, true)
	assert.Equal(t, asc, rows)
}

func TestSortDateTreatedNumerically(t *testing.T) {
	early := domain.LedgerRow{ID: uuid.New(), Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	late := domain.LedgerRow{ID: uuid.New(), Date: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)}
	missing := domain.LedgerRow{ID: uuid.New()}
	rows := []domain.LedgerRow{late, missing, early}

	sortRows(rows, ColDate, true)
	assert.Equal(t, early.ID, rows[0].ID)
	assert.Equal(t, missing.ID, rows[2].ID)

	sortRows(rows, ColDate, false)
	assert.Equal(t, late.ID, rows[0].ID)
	assert.Equal(t, missing.ID, rows[2].ID)
}

func TestSortNilRelatedIDLast(t *testing.T) {
	linked := uuid.New()
	rows := []domain.LedgerRow{
		{ID: uuid.New()},
		{ID: uuid.New(), RelatedID: &linked},
	}
	sortRows(rows, ColRelatedID, true)
	assert.NotNil(t, rows[0].RelatedID)
	assert.Nil(t, rows[1].RelatedID)
}
