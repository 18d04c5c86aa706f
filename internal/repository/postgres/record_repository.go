package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/rs/zerolog/log"
)

type recordRepository struct {
	db *DB
}

// NewRecordRepository builds the sqlx-backed record store.
func NewRecordRepository(db *DB) repository.RecordRepository {
	return &recordRepository{db: db}
}

const (
	inventoryColumns = `id, owner_id, title, vendor, department_id, category_id, subcategory_id,
		purchase_price, purchase_date, quantity_on_hand, receipt_path, created_at`
	saleColumns = `id, owner_id, item_title, sale_price, shipping_cost, transaction_fees,
		platform, sale_date, purchase_price, purchase_date, inventory_id, receipt_path, created_at`
	refundColumns  = `id, owner_id, item_label, amount, refund_date, sale_id, receipt_path, created_at`
	expenseColumns = `id, owner_id, ledger_account, vendor, description, amount, date,
		bank_account, sale_id, receipt_path, created_at`
	rebateColumns = `id, owner_id, vendor, description, amount, date, bank_account, created_at`
)

func orderAndLimit(dateCol string, q repository.RangeQuery, argOffset int) (string, []interface{}) {
	dir := "DESC"
	if q.Ascending {
		dir = "ASC"
	}
	clause := fmt.Sprintf(" ORDER BY %s %s", dateCol, dir)
	var args []interface{}
	if q.Limit > 0 {
		clause += fmt.Sprintf(" LIMIT $%d", argOffset)
		args = append(args, q.Limit)
	}
	return clause, args
}

func (r *recordRepository) listRange(ctx context.Context, dest interface{}, table, columns, dateCol string, q repository.RangeQuery) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_id = $1 AND %s >= $2 AND %s <= $3`,
		columns, table, dateCol, dateCol)
	args := []interface{}{q.Actor, q.Start, q.End}
	clause, extra := orderAndLimit(dateCol, q, len(args)+1)
	query += clause
	args = append(args, extra...)

	if err := sqlx.SelectContext(ctx, r.db, dest, query, args...); err != nil {
		return translateErr("list "+table, err)
	}
	return nil
}

func (r *recordRepository) ListInventory(ctx context.Context, q repository.RangeQuery) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	// purchase_date is nullable; intake rows without a date fall outside any
	// date-window read, matching the unified feed.
	if err := r.listRange(ctx, &items, "inventory", inventoryColumns, "purchase_date", q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *recordRepository) ListSales(ctx context.Context, q repository.RangeQuery) ([]domain.SaleRecord, error) {
	var sales []domain.SaleRecord
	if err := r.listRange(ctx, &sales, "sales", saleColumns, "sale_date", q); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *recordRepository) ListRefunds(ctx context.Context, q repository.RangeQuery) ([]domain.RefundRecord, error) {
	var refunds []domain.RefundRecord
	if err := r.listRange(ctx, &refunds, "refunds", refundColumns, "refund_date", q); err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *recordRepository) ListExpenses(ctx context.Context, q repository.RangeQuery) ([]domain.ExpenseRecord, error) {
	var expenses []domain.ExpenseRecord
	if err := r.listRange(ctx, &expenses, "expenses", expenseColumns, "date", q); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *recordRepository) ListRebates(ctx context.Context, q repository.RangeQuery) ([]domain.RebateRecord, error) {
	var rebates []domain.RebateRecord
	if err := r.listRange(ctx, &rebates, "rebates", rebateColumns, "date", q); err != nil {
		return nil, err
	}
	return rebates, nil
}

func (r *recordRepository) GetInventory(ctx context.Context, actor, id uuid.UUID) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	query := fmt.Sprintf(`SELECT %s FROM inventory WHERE owner_id = $1 AND id = $2`, inventoryColumns)
	if err := r.db.GetContext(ctx, &item, query, actor, id); err != nil {
		return domain.InventoryItem{}, translateErr("get inventory", err)
	}
	return item, nil
}

func (r *recordRepository) GetSale(ctx context.Context, actor, id uuid.UUID) (domain.SaleRecord, error) {
	var sale domain.SaleRecord
	query := fmt.Sprintf(`SELECT %s FROM sales WHERE owner_id = $1 AND id = $2`, saleColumns)
	if err := r.db.GetContext(ctx, &sale, query, actor, id); err != nil {
		return domain.SaleRecord{}, translateErr("get sale", err)
	}
	return sale, nil
}

func (r *recordRepository) UpdateInventoryQuantity(ctx context.Context, actor, id uuid.UUID, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET quantity_on_hand = $1 WHERE owner_id = $2 AND id = $3`,
		quantity, actor, id)
	if err != nil {
		return translateErr("update inventory quantity", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update inventory quantity: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *recordRepository) FindInventoryByTitle(ctx context.Context, actor uuid.UUID, title string) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	query := fmt.Sprintf(`SELECT %s FROM inventory
		WHERE owner_id = $1 AND LOWER(TRIM(title)) = LOWER(TRIM($2))
		ORDER BY purchase_date DESC NULLS LAST, created_at DESC`, inventoryColumns)
	if err := sqlx.SelectContext(ctx, r.db, &items, query, actor, title); err != nil {
		return nil, translateErr("find inventory by title", err)
	}
	return items, nil
}

func (r *recordRepository) InsertInventory(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	var out domain.InventoryItem
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO inventory
			(id, owner_id, title, vendor, department_id, category_id, subcategory_id,
			 purchase_price, purchase_date, quantity_on_hand, receipt_path, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())`,
			item.ID, item.OwnerID, item.Title, item.Vendor, item.DepartmentID, item.CategoryID,
			item.SubcategoryID, item.PurchasePrice, item.PurchaseDate, item.QuantityOnHand, item.ReceiptPath)
		if err != nil {
			return translateErr("insert inventory", err)
		}
		query := fmt.Sprintf(`SELECT %s FROM inventory WHERE owner_id = $1 AND id = $2`, inventoryColumns)
		if err := tx.GetContext(ctx, &out, query, item.OwnerID, item.ID); err != nil {
			return translateErr("insert inventory", err)
		}
		return nil
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return out, nil
}

func (r *recordRepository) InsertSale(ctx context.Context, sale domain.SaleRecord) (domain.SaleRecord, error) {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	var out domain.SaleRecord
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO sales
			(id, owner_id, item_title, sale_price, shipping_cost, transaction_fees,
			 platform, sale_date, purchase_price, purchase_date, inventory_id, receipt_path, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW())`,
			sale.ID, sale.OwnerID, sale.ItemTitle, sale.SalePrice, sale.ShippingCost,
			sale.TransactionFees, sale.Platform, sale.SaleDate, sale.PurchasePrice,
			sale.PurchaseDate, sale.InventoryID, sale.ReceiptPath)
		if err != nil {
			return translateErr("insert sale", err)
		}
		query := fmt.Sprintf(`SELECT %s FROM sales WHERE owner_id = $1 AND id = $2`, saleColumns)
		if err := tx.GetContext(ctx, &out, query, sale.OwnerID, sale.ID); err != nil {
			return translateErr("insert sale", err)
		}
		return nil
	})
	if err != nil {
		return domain.SaleRecord{}, err
	}
	return out, nil
}

func (r *recordRepository) InsertRefund(ctx context.Context, refund domain.RefundRecord) (domain.RefundRecord, error) {
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	var out domain.RefundRecord
	query := fmt.Sprintf(`INSERT INTO refunds
		(id, owner_id, item_label, amount, refund_date, sale_id, receipt_path, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		RETURNING %s`, refundColumns)
	if err := r.db.GetContext(ctx, &out, query,
		refund.ID, refund.OwnerID, refund.ItemLabel, refund.Amount, refund.RefundDate,
		refund.SaleID, refund.ReceiptPath); err != nil {
		return domain.RefundRecord{}, translateErr("insert refund", err)
	}
	return out, nil
}

func (r *recordRepository) InsertExpense(ctx context.Context, expense domain.ExpenseRecord) (domain.ExpenseRecord, error) {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	var out domain.ExpenseRecord
	query := fmt.Sprintf(`INSERT INTO expenses
		(id, owner_id, ledger_account, vendor, description, amount, date,
		 bank_account, sale_id, receipt_path, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		RETURNING %s`, expenseColumns)
	if err := r.db.GetContext(ctx, &out, query,
		expense.ID, expense.OwnerID, expense.LedgerAccount, expense.Vendor, expense.Description,
		expense.Amount, expense.Date, expense.BankAccount, expense.SaleID, expense.ReceiptPath); err != nil {
		return domain.ExpenseRecord{}, translateErr("insert expense", err)
	}
	return out, nil
}

func (r *recordRepository) InsertRebate(ctx context.Context, rebate domain.RebateRecord) (domain.RebateRecord, error) {
	if rebate.ID == uuid.Nil {
		rebate.ID = uuid.New()
	}
	var out domain.RebateRecord
	query := fmt.Sprintf(`INSERT INTO rebates
		(id, owner_id, vendor, description, amount, date, bank_account, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		RETURNING %s`, rebateColumns)
	if err := r.db.GetContext(ctx, &out, query,
		rebate.ID, rebate.OwnerID, rebate.Vendor, rebate.Description, rebate.Amount,
		rebate.Date, rebate.BankAccount); err != nil {
		return domain.RebateRecord{}, translateErr("insert rebate", err)
	}
	return out, nil
}

// patchColumns maps the ledger-level patch onto the columns each source
// table actually has. Fields a table lacks are dropped, keeping sparse rows
// uniform for the view layer.
func patchColumns(src domain.SourceType, patch repository.RowPatch) (map[string]interface{}, error) {
	cols := make(map[string]interface{})

	setDate := func(col string) {
		if patch.Date != nil {
			cols[col] = *patch.Date
		}
	}
	setAmount := func(col string) {
		if patch.Amount != nil {
			cols[col] = *patch.Amount
		}
	}
	setDescription := func(col string) {
		if patch.Description != nil {
			cols[col] = *patch.Description
		}
	}

	switch src {
	case domain.SourceInventory:
		setDate("purchase_date")
		setAmount("purchase_price")
		setDescription("title")
		if patch.Vendor != nil {
			cols["vendor"] = *patch.Vendor
		}
	case domain.SourceSale:
		setDate("sale_date")
		setAmount("sale_price")
		setDescription("item_title")
		if patch.Platform != nil {
			cols["platform"] = *patch.Platform
		}
	case domain.SourceRefund:
		setDate("refund_date")
		setAmount("amount")
		setDescription("item_label")
	case domain.SourceExpense:
		setDate("date")
		setAmount("amount")
		setDescription("description")
		if patch.Vendor != nil {
			cols["vendor"] = *patch.Vendor
		}
		if patch.LedgerAccount != nil {
			cols["ledger_account"] = *patch.LedgerAccount
		}
		if patch.BankAccount != nil {
			cols["bank_account"] = *patch.BankAccount
		}
	case domain.SourceRebate:
		setDate("date")
		setAmount("amount")
		setDescription("description")
		if patch.Vendor != nil {
			cols["vendor"] = *patch.Vendor
		}
		if patch.BankAccount != nil {
			cols["bank_account"] = *patch.BankAccount
		}
	default:
		return nil, fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, src)
	}

	return cols, nil
}

func sourceTable(src domain.SourceType) (string, error) {
	switch src {
	case domain.SourceInventory:
		return "inventory", nil
	case domain.SourceSale:
		return "sales", nil
	case domain.SourceRefund:
		return "refunds", nil
	case domain.SourceExpense:
		return "expenses", nil
	case domain.SourceRebate:
		return "rebates", nil
	default:
		return "", fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, src)
	}
}

func (r *recordRepository) Update(ctx context.Context, actor uuid.UUID, src domain.SourceType, id uuid.UUID, patch repository.RowPatch) error {
	if patch.Empty() {
		return fmt.Errorf("%w: empty patch", domain.ErrInvalidInput)
	}
	table, err := sourceTable(src)
	if err != nil {
		return err
	}
	cols, err := patchColumns(src, patch)
	if err != nil {
		return err
	}
	// A non-empty patch can still map to zero columns when the source table
	// lacks every patched field.
	if len(cols) == 0 {
		return fmt.Errorf("%w: empty patch", domain.ErrInvalidInput)
	}

	sets := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols)+2)
	i := 1
	for col, val := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	args = append(args, actor, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE owner_id = $%d AND id = $%d`,
		table, strings.Join(sets, ", "), i, i+1)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateErr("update "+table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update %s: %w", table, domain.ErrNotFound)
	}

	log.Debug().Str("table", table).Str("id", id.String()).Int("fields", len(cols)).Msg("record updated")
	return nil
}

func (r *recordRepository) Delete(ctx context.Context, actor uuid.UUID, src domain.SourceType, id uuid.UUID) error {
	table, err := sourceTable(src)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE owner_id = $1 AND id = $2`, table), actor, id)
	if err != nil {
		return translateErr("delete "+table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s: %w", table, domain.ErrNotFound)
	}
	return nil
}

func (r *recordRepository) SetReceiptPath(ctx context.Context, actor uuid.UUID, src domain.SourceType, id uuid.UUID, path string) error {
	table, err := sourceTable(src)
	if err != nil {
		return err
	}
	if src == domain.SourceRebate {
		return fmt.Errorf("%w: rebates do not carry receipts", domain.ErrInvalidInput)
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET receipt_path = $1 WHERE owner_id = $2 AND id = $3`, table),
		path, actor, id)
	if err != nil {
		return translateErr("set receipt path", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set receipt path: %w", domain.ErrNotFound)
	}
	return nil
}
