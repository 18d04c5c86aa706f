// internal/api/handlers/ledger_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/resaleworks/bookkeeper/internal/ledger"
	"github.com/resaleworks/bookkeeper/internal/repository"
)

// LedgerHandler serves the unified transaction list and its CSV export. The
// HTTP surface is stateless: each request builds a fresh view, applies the
// query parameters and reads one snapshot.
type LedgerHandler struct {
	engine *ledger.Engine
	writer repository.RecordWriter
}

func NewLedgerHandler(engine *ledger.Engine, writer repository.RecordWriter) *LedgerHandler {
	return &LedgerHandler{engine: engine, writer: writer}
}

// GetTransactions returns one page of the merged, filtered, sorted ledger.
func (h *LedgerHandler) GetTransactions(c *gin.Context) {
	view, ok := h.buildView(c)
	if !ok {
		return
	}

	view.SetPage(parsePositiveIntWithDefault(c.Query("page"), 1))

	snap := view.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"rows":        snap.Rows,
		"total_rows":  snap.TotalRows,
		"page":        snap.PageNumber,
		"page_size":   snap.PageSize,
		"total_pages": snap.TotalPages,
		"columns":     view.VisibleColumns(),
	})
}

// ExportTransactions streams the filtered rows, all pages, as a CSV
// attachment.
func (h *LedgerHandler) ExportTransactions(c *gin.Context) {
	view, ok := h.buildView(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+view.ExportFilename()+`"`)
	if err := view.ExportCSV(c.Writer); err != nil {
		respondError(c, err)
	}
}

func (h *LedgerHandler) buildView(c *gin.Context) (*ledger.View, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return nil, false
	}

	start, err := parseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start date is required as YYYY-MM-DD"})
		return nil, false
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end date is required as YYYY-MM-DD"})
		return nil, false
	}

	view := ledger.NewView(h.engine, h.writer, actor)
	if err := view.Load(c.Request.Context(), start, end); err != nil {
		respondError(c, err)
		return nil, false
	}

	if tab := strings.TrimSpace(c.Query("tab")); tab != "" {
		if err := view.SetTab(ledger.Tab(tab)); err != nil {
			respondError(c, err)
			return nil, false
		}
	}

	filters, ok := parseFilters(c)
	if !ok {
		return nil, false
	}
	view.SetFilters(filters)

	if sortKey := strings.TrimSpace(c.Query("sort")); sortKey != "" {
		ascending := !strings.EqualFold(c.DefaultQuery("dir", "asc"), "desc")
		if err := view.SetSort(ledger.ColumnKey(sortKey), ascending); err != nil {
			respondError(c, err)
			return nil, false
		}
	}

	if err := view.SetPageSize(parsePositiveIntWithDefault(c.Query("page_size"), ledger.DefaultPageSize)); err != nil {
		respondError(c, err)
		return nil, false
	}

	if raw := strings.TrimSpace(c.Query("columns")); raw != "" {
		var cols []ledger.ColumnKey
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cols = append(cols, ledger.ColumnKey(part))
			}
		}
		if err := view.SetVisibleColumns(cols); err != nil {
			respondError(c, err)
			return nil, false
		}
	}

	return view, true
}

func parseFilters(c *gin.Context) (ledger.Filters, bool) {
	filters := ledger.Filters{
		Search:   c.Query("search"),
		Platform: strings.TrimSpace(c.Query("platform")),
	}

	min, err := parseFloatPtr(c.Query("amount_min"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_min must be numeric, got " + strconv.Quote(c.Query("amount_min"))})
		return ledger.Filters{}, false
	}
	max, err := parseFloatPtr(c.Query("amount_max"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_max must be numeric, got " + strconv.Quote(c.Query("amount_max"))})
		return ledger.Filters{}, false
	}
	filters.AmountMin = min
	filters.AmountMax = max
	return filters, true
}
