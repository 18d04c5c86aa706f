// internal/api/handlers/records_handler.go
package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/cache"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/reconcile"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/resaleworks/bookkeeper/internal/storage"
	"github.com/resaleworks/bookkeeper/internal/taxonomy"
	"github.com/rs/zerolog/log"
)

// RecordsHandler covers creation, mutation and receipt attachment for the
// five source record types. Every successful write invalidates the actor's
// cached report series.
type RecordsHandler struct {
	repo       repository.RecordRepository
	reconciler *reconcile.Reconciler
	resolver   *taxonomy.Resolver
	receipts   storage.ReceiptStorage // nil when receipt storage is disabled
	cache      cache.YearSeriesCache
}

func NewRecordsHandler(
	repo repository.RecordRepository,
	reconciler *reconcile.Reconciler,
	resolver *taxonomy.Resolver,
	receipts storage.ReceiptStorage,
	seriesCache cache.YearSeriesCache,
) *RecordsHandler {
	return &RecordsHandler{
		repo:       repo,
		reconciler: reconciler,
		resolver:   resolver,
		receipts:   receipts,
		cache:      seriesCache,
	}
}

type inventoryRequest struct {
	Title          string  `json:"title" binding:"required"`
	Vendor         string  `json:"vendor"`
	Department     string  `json:"department"`
	Category       string  `json:"category"`
	Subcategory    string  `json:"subcategory"`
	PurchasePrice  float64 `json:"purchase_price"`
	PurchaseDate   string  `json:"purchase_date"`
	QuantityOnHand int     `json:"quantity_on_hand"`
}

// CreateInventory records a purchased item. Taxonomy names are resolved
// find-or-create, each level parented on the one above.
func (h *RecordsHandler) CreateInventory(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	purchaseDate, err := parseDatePtr(req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purchase_date must be YYYY-MM-DD"})
		return
	}

	deptID, catID, subID, err := h.resolveHierarchy(c, actor, req.Department, req.Category, req.Subcategory)
	if err != nil {
		respondError(c, err)
		return
	}

	qty := req.QuantityOnHand
	if qty < 1 {
		qty = 1
	}
	item, err := h.repo.InsertInventory(c.Request.Context(), domain.InventoryItem{
		OwnerID:        actor,
		Title:          strings.TrimSpace(req.Title),
		Vendor:         strings.TrimSpace(req.Vendor),
		DepartmentID:   deptID,
		CategoryID:     catID,
		SubcategoryID:  subID,
		PurchasePrice:  req.PurchasePrice,
		PurchaseDate:   purchaseDate,
		QuantityOnHand: qty,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, actor)
	c.JSON(http.StatusCreated, item)
}

type saleRequest struct {
	ItemTitle       string  `json:"item_title" binding:"required"`
	SalePrice       float64 `json:"sale_price"`
	ShippingCost    float64 `json:"shipping_cost"`
	TransactionFees float64 `json:"transaction_fees"`
	Platform        string  `json:"platform"`
	SaleDate        string  `json:"sale_date" binding:"required"`
	PurchasePrice   float64 `json:"purchase_price"`
	PurchaseDate    string  `json:"purchase_date"`
	InventoryID     string  `json:"inventory_id"`
}

// CreateSale records a sale. When the sale is linked to an inventory item,
// the quantity decrement runs afterward as best effort: a failed decrement
// is reported in the response but never rolls the sale back.
func (h *RecordsHandler) CreateSale(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saleDate, err := parseDate(req.SaleDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sale_date must be YYYY-MM-DD"})
		return
	}
	purchaseDate, err := parseDatePtr(req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purchase_date must be YYYY-MM-DD"})
		return
	}
	inventoryID, err := parseUUIDPtr(req.InventoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory_id"})
		return
	}

	sale, err := h.repo.InsertSale(c.Request.Context(), domain.SaleRecord{
		OwnerID:         actor,
		ItemTitle:       strings.TrimSpace(req.ItemTitle),
		SalePrice:       req.SalePrice,
		ShippingCost:    req.ShippingCost,
		TransactionFees: req.TransactionFees,
		Platform:        domain.NormalizePlatform(req.Platform),
		SaleDate:        saleDate,
		PurchasePrice:   req.PurchasePrice,
		PurchaseDate:    purchaseDate,
		InventoryID:     inventoryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, actor)

	resp := gin.H{"sale": sale}
	if err := h.reconciler.SaleRecorded(c.Request.Context(), actor, sale); err != nil {
		log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("inventory decrement failed")
		resp["warning"] = "sale recorded but inventory quantity was not decremented"
	}
	c.JSON(http.StatusCreated, resp)
}

type refundRequest struct {
	ItemLabel  string  `json:"item_label"`
	Amount     float64 `json:"amount"`
	RefundDate string  `json:"refund_date" binding:"required"`
	SaleID     string  `json:"sale_id"`
}

// CreateRefund records a refund. An unlinked refund is allowed; a linked one
// gets the provenance projection hydrated from the sale and the
// best-matching inventory row.
func (h *RecordsHandler) CreateRefund(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	refundDate, err := parseDate(req.RefundDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refund_date must be YYYY-MM-DD"})
		return
	}
	saleID, err := parseUUIDPtr(req.SaleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale_id"})
		return
	}

	label := strings.TrimSpace(req.ItemLabel)
	var sale domain.SaleRecord
	if saleID != nil {
		sale, err = h.repo.GetSale(c.Request.Context(), actor, *saleID)
		if err != nil {
			respondError(c, err)
			return
		}
		if label == "" {
			label = sale.ItemTitle
		}
	}

	refund, err := h.repo.InsertRefund(c.Request.Context(), domain.RefundRecord{
		OwnerID:    actor,
		ItemLabel:  label,
		Amount:     req.Amount,
		RefundDate: refundDate,
		SaleID:     saleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, actor)

	resp := gin.H{"refund": refund}
	if saleID != nil {
		resp["provenance"] = h.reconciler.RefundProvenance(c.Request.Context(), actor, sale)
	}
	c.JSON(http.StatusCreated, resp)
}

type expenseRequest struct {
	LedgerAccount string  `json:"ledger_account"`
	Vendor        string  `json:"vendor"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date" binding:"required"`
	BankAccount   string  `json:"bank_account"`
	SaleID        string  `json:"sale_id"`
}

// CreateExpense records an operating expense. The friendly account label
// maps into the coarse GL enum; labels outside the enum are folded into the
// description so they stay visible.
func (h *RecordsHandler) CreateExpense(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	saleID, err := parseUUIDPtr(req.SaleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale_id"})
		return
	}

	expense, err := h.repo.InsertExpense(c.Request.Context(), domain.ExpenseRecord{
		OwnerID:       actor,
		LedgerAccount: domain.MapGLAccount(req.LedgerAccount),
		Vendor:        strings.TrimSpace(req.Vendor),
		Description:   domain.FoldGLLabel(strings.TrimSpace(req.Description), req.LedgerAccount),
		Amount:        req.Amount,
		Date:          date,
		BankAccount:   strings.TrimSpace(req.BankAccount),
		SaleID:        saleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, actor)
	c.JSON(http.StatusCreated, expense)
}

type rebateRequest struct {
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date" binding:"required"`
	BankAccount string  `json:"bank_account"`
}

// CreateRebate records a vendor rebate: an expense reduction, never income.
func (h *RecordsHandler) CreateRebate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req rebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	rebate, err := h.repo.InsertRebate(c.Request.Context(), domain.RebateRecord{
		OwnerID:     actor,
		Vendor:      strings.TrimSpace(req.Vendor),
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Date:        date,
		BankAccount: strings.TrimSpace(req.BankAccount),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, actor)
	c.JSON(http.StatusCreated, rebate)
}

type patchRequest struct {
	Date          *string  `json:"date"`
	Amount        *float64 `json:"amount"`
	Description   *string  `json:"description"`
	Vendor        *string  `json:"vendor"`
	Platform      *string  `json:"platform"`
	LedgerAccount *string  `json:"ledger_account"`
	BankAccount   *string  `json:"bank_account"`
}

// UpdateRecord patches one source record addressed by source type and id.
// Fields the source table lacks are ignored by the store layer.
func (h *RecordsHandler) UpdateRecord(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	src, err := parseSourceType(c.Param("source"))
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := repository.RowPatch{
		Amount:      req.Amount,
		Description: req.Description,
		Vendor:      req.Vendor,
		BankAccount: req.BankAccount,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		patch.Date = &date
	}
	if req.Platform != nil {
		p := domain.NormalizePlatform(*req.Platform)
		patch.Platform = &p
	}
	if req.LedgerAccount != nil {
		gl := domain.MapGLAccount(*req.LedgerAccount)
		patch.LedgerAccount = &gl
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patch carries no fields"})
		return
	}

	if err := h.repo.Update(c.Request.Context(), actor, src, id, patch); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, actor)
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

// DeleteRecord removes one source record.
func (h *RecordsHandler) DeleteRecord(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	src, err := parseSourceType(c.Param("source"))
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), actor, src, id); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, actor)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// UploadReceipt attaches a receipt file to a record. Rebates never carry
// receipts.
func (h *RecordsHandler) UploadReceipt(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if h.receipts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt storage is not configured"})
		return
	}
	src, err := parseSourceType(c.Param("source"))
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable receipt file"})
		return
	}
	defer reader.Close()

	key := path.Join("receipts", actor.String(), string(src), id.String(), path.Base(file.Filename))
	stored, err := h.receipts.UploadReceipt(c.Request.Context(), key,
		file.Header.Get("Content-Type"), file.Size, reader)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.repo.SetReceiptPath(c.Request.Context(), actor, src, id, stored); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt_path": stored})
}

func (h *RecordsHandler) resolveHierarchy(c *gin.Context, actor uuid.UUID, department, category, subcategory string) (*uuid.UUID, *uuid.UUID, *uuid.UUID, error) {
	var deptID, catID, subID *uuid.UUID
	ctx := c.Request.Context()

	if strings.TrimSpace(department) != "" {
		node, err := h.resolver.Ensure(ctx, actor, domain.LevelDepartment, nil, department)
		if err != nil {
			return nil, nil, nil, err
		}
		deptID = &node.ID
	}
	if strings.TrimSpace(category) != "" {
		node, err := h.resolver.Ensure(ctx, actor, domain.LevelCategory, deptID, category)
		if err != nil {
			return nil, nil, nil, err
		}
		catID = &node.ID
	}
	if strings.TrimSpace(subcategory) != "" {
		node, err := h.resolver.Ensure(ctx, actor, domain.LevelSubcategory, catID, subcategory)
		if err != nil {
			return nil, nil, nil, err
		}
		subID = &node.ID
	}
	return deptID, catID, subID, nil
}

func (h *RecordsHandler) invalidate(c *gin.Context, actor uuid.UUID) {
	if err := h.cache.InvalidateActor(c.Request.Context(), actor); err != nil {
		log.Warn().Err(err).Msg("report cache invalidation failed")
	}
}
