package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return &DB{
		DB:  sqlx.NewDb(raw, "sqlmock"),
		sem: semaphore.NewWeighted(10),
	}, mock
}

func saleRows(id, owner uuid.UUID, title string, price float64, at time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "item_title", "sale_price", "shipping_cost", "transaction_fees",
		"platform", "sale_date", "purchase_price", "purchase_date", "inventory_id",
		"receipt_path", "created_at",
	}).AddRow(id.String(), owner.String(), title, price, 0.0, 0.0,
		"ebay", at, 0.0, nil, nil, "", at)
}

func TestInsertSaleCommitsInsertAndReadBackTogether(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecordRepository(db)

	owner, id := uuid.New(), uuid.New()
	soldAt := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM sales WHERE owner_id").
		WillReturnRows(saleRows(id, owner, "lamp", 40, soldAt))
	mock.ExpectCommit()

	sale, err := repo.InsertSale(context.Background(), domain.SaleRecord{
		ID:        id,
		OwnerID:   owner,
		ItemTitle: "lamp",
		SalePrice: 40,
		Platform:  domain.PlatformEbay,
		SaleDate:  soldAt,
	})
	require.NoError(t, err)
	assert.Equal(t, id, sale.ID)
	assert.Equal(t, "lamp", sale.ItemTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertInventoryRollsBackWhenReadBackFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO inventory").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM inventory WHERE owner_id").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.InsertInventory(context.Background(), domain.InventoryItem{
		OwnerID: uuid.New(),
		Title:   "lamp",
	})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsEmptyPatchBeforeTouchingTheStore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecordRepository(db)

	err := repo.Update(context.Background(), uuid.New(), domain.SourceSale, uuid.New(), repository.RowPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRefusesCancelledContext(t *testing.T) {
	db, mock := newMockDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.WithTx(ctx, func(tx *sqlx.Tx) error { return nil })
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
