// internal/ledger/view.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrStaleLoad marks a load whose result was superseded by a newer request
// before it finished. The caller discards it; the view state is untouched.
var ErrStaleLoad = errors.New("ledger: stale load superseded")

// DefaultPageSize matches the default page length of the transaction list.
const DefaultPageSize = 25

// Page is one page of the current view plus enough context to render
// pagination controls.
type Page struct {
	Rows       []domain.LedgerRow
	TotalRows  int
	PageNumber int
	PageSize   int
	TotalPages int
}

// View holds the presentation state of the unified transaction list: the
// loaded window, the active tab, filters, the single sort key, pagination
// and column visibility. The filtered and sorted row list is derived once
// per state change, not on every page read, so an optimistic patch can
// leave it deliberately un-rederived.
type View struct {
	engine *Engine
	writer repository.RecordWriter
	actor  uuid.UUID

	// generation orders concurrent loads; only the newest may apply.
	generation atomic.Uint64

	mu       sync.Mutex
	start    time.Time
	end      time.Time
	tab      Tab
	filters  Filters
	sortKey  ColumnKey
	sortAsc  bool
	page     int
	pageSize int
	visible  []ColumnKey

	rows    []domain.LedgerRow // last applied full load, unfiltered
	display []domain.LedgerRow // rows after tab, filters and sort
	patched bool               // optimistic patch applied; display not re-derived
}

// NewView starts on the all tab, sorted by date descending, page 1.
func NewView(engine *Engine, writer repository.RecordWriter, actor uuid.UUID) *View {
	return &View{
		engine:   engine,
		writer:   writer,
		actor:    actor,
		tab:      TabAll,
		sortKey:  ColDate,
		sortAsc:  false,
		page:     1,
		pageSize: DefaultPageSize,
		visible:  append([]ColumnKey(nil), DefaultVisibleColumns...),
	}
}

// Load replaces the view's window and re-queries all five streams. When
// loads overlap, only the most recently issued one may apply its rows;
// the rest return ErrStaleLoad. A failed current load empties the view
// rather than showing rows from the previous window.
func (v *View) Load(ctx context.Context, start, end time.Time) error {
	gen := v.generation.Add(1)

	rows, err := v.engine.Load(ctx, v.actor, start, end)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation.Load() {
		log.Debug().Uint64("generation", gen).Msg("ledger load discarded as stale")
		return ErrStaleLoad
	}
	// The window is recorded under the same generation check as the rows, so
	// a superseded load can never leave a stale range behind for reload.
	v.start, v.end = start, end
	if err != nil {
		v.rows = nil
		v.refreshLocked()
		return err
	}
	v.rows = rows
	v.page = 1
	v.refreshLocked()
	return nil
}

// SetTab switches the source-type tab. Unknown tabs are rejected; changing
// tab resets to page 1.
func (v *View) SetTab(tab Tab) error {
	if !validTab(tab) {
		return fmt.Errorf("%w: unknown tab %q", domain.ErrInvalidInput, tab)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if tab == v.tab {
		return nil
	}
	v.tab = tab
	v.page = 1
	v.refreshLocked()
	return nil
}

// SetFilters replaces the filter set and resets to page 1.
func (v *View) SetFilters(f Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = f
	v.page = 1
	v.refreshLocked()
}

// SortBy sorts by the given column. Selecting the already active key flips
// the direction; a new key starts ascending. Either way the view resets to
// page 1.
func (v *View) SortBy(key ColumnKey) error {
	if !validColumn(key) {
		return fmt.Errorf("%w: unknown sort column %q", domain.ErrInvalidInput, key)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if key == v.sortKey {
		v.sortAsc = !v.sortAsc
	} else {
		v.sortKey = key
		v.sortAsc = true
	}
	v.page = 1
	v.refreshLocked()
	return nil
}

// SetSort sets the sort key and direction explicitly, for callers that
// carry both in a request rather than toggling. Resets to page 1.
func (v *View) SetSort(key ColumnKey, ascending bool) error {
	if !validColumn(key) {
		return fmt.Errorf("%w: unknown sort column %q", domain.ErrInvalidInput, key)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sortKey = key
	v.sortAsc = ascending
	v.page = 1
	v.refreshLocked()
	return nil
}

// SetPage moves to a 1-indexed page. Pages past the end clamp to the last
// page so a shrinking filter result never strands the view on an empty page.
func (v *View) SetPage(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if last := v.totalPagesLocked(); page > last {
		page = last
	}
	v.page = page
}

// SetPageSize changes the page length and resets to page 1.
func (v *View) SetPageSize(size int) error {
	if size < 1 {
		return fmt.Errorf("%w: page size %d", domain.ErrInvalidInput, size)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pageSize = size
	v.page = 1
	return nil
}

// SetVisibleColumns replaces the visible column set, preserving canonical
// column order regardless of the order given.
func (v *View) SetVisibleColumns(keys []ColumnKey) error {
	want := make(map[ColumnKey]bool, len(keys))
	for _, key := range keys {
		if !validColumn(key) {
			return fmt.Errorf("%w: unknown column %q", domain.ErrInvalidInput, key)
		}
		want[key] = true
	}
	if len(want) == 0 {
		return fmt.Errorf("%w: at least one visible column required", domain.ErrInvalidInput)
	}
	ordered := make([]ColumnKey, 0, len(want))
	for _, key := range Columns {
		if want[key] {
			ordered = append(ordered, key)
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = ordered
	return nil
}

// Snapshot returns the current page of the derived row list.
func (v *View) Snapshot() Page {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := len(v.display)
	pages := v.totalPagesLocked()
	page := v.page
	if page > pages {
		page = pages
	}
	lo := (page - 1) * v.pageSize
	hi := lo + v.pageSize
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}
	return Page{
		Rows:       append([]domain.LedgerRow(nil), v.display[lo:hi]...),
		TotalRows:  total,
		PageNumber: page,
		PageSize:   v.pageSize,
		TotalPages: pages,
	}
}

// EditRow updates the source record behind a row, then reloads the whole
// window. A failed update leaves both the record and the view untouched.
func (v *View) EditRow(ctx context.Context, id uuid.UUID, patch repository.RowPatch) error {
	src, ok := v.sourceOf(id)
	if !ok {
		return fmt.Errorf("%w: row %s not in view", domain.ErrNotFound, id)
	}
	if err := v.writer.Update(ctx, v.actor, src, id, patch); err != nil {
		return err
	}
	return v.reload(ctx)
}

// PatchRow is the optimistic variant of EditRow: after the store write
// succeeds the row is patched in place and the derived list is deliberately
// not re-filtered or re-sorted. The patched state persists until the next
// full load or state change.
func (v *View) PatchRow(ctx context.Context, id uuid.UUID, patch repository.RowPatch) error {
	src, ok := v.sourceOf(id)
	if !ok {
		return fmt.Errorf("%w: row %s not in view", domain.ErrNotFound, id)
	}
	if err := v.writer.Update(ctx, v.actor, src, id, patch); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	patchRowSlice(v.rows, id, patch)
	patchRowSlice(v.display, id, patch)
	v.patched = true
	return nil
}

// DeleteRow removes the source record behind a row, then reloads.
func (v *View) DeleteRow(ctx context.Context, id uuid.UUID) error {
	src, ok := v.sourceOf(id)
	if !ok {
		return fmt.Errorf("%w: row %s not in view", domain.ErrNotFound, id)
	}
	if err := v.writer.Delete(ctx, v.actor, src, id); err != nil {
		return err
	}
	return v.reload(ctx)
}

// HasPendingPatch reports whether an optimistic patch is showing that the
// derived list has not reconciled yet.
func (v *View) HasPendingPatch() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.patched
}

// VisibleColumns returns the visible column keys in display order.
func (v *View) VisibleColumns() []ColumnKey {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]ColumnKey(nil), v.visible...)
}

func (v *View) reload(ctx context.Context) error {
	v.mu.Lock()
	start, end := v.start, v.end
	v.mu.Unlock()
	err := v.Load(ctx, start, end)
	if errors.Is(err, ErrStaleLoad) {
		// A newer load is already in flight; its result stands.
		return nil
	}
	return err
}

func (v *View) sourceOf(id uuid.UUID) (domain.SourceType, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, row := range v.rows {
		if row.ID == id {
			return row.SourceType, true
		}
	}
	return "", false
}

func (v *View) refreshLocked() {
	v.display = applyFilters(v.rows, v.tab, v.filters)
	sortRows(v.display, v.sortKey, v.sortAsc)
	v.patched = false
}

func (v *View) totalPagesLocked() int {
	if len(v.display) == 0 {
		return 1
	}
	return (len(v.display) + v.pageSize - 1) / v.pageSize
}

func patchRowSlice(rows []domain.LedgerRow, id uuid.UUID, patch repository.RowPatch) {
	for i := range rows {
		if rows[i].ID != id {
			continue
		}
		if patch.Date != nil {
			rows[i].Date = *patch.Date
		}
		if patch.Amount != nil {
			rows[i].Amount = *patch.Amount
		}
		if patch.Description != nil {
			rows[i].Description = *patch.Description
		}
		if patch.Vendor != nil {
			rows[i].Vendor = *patch.Vendor
		}
		if patch.Platform != nil {
			rows[i].Platform = string(*patch.Platform)
		}
		if patch.LedgerAccount != nil {
			rows[i].LedgerAccount = string(*patch.LedgerAccount)
		}
		if patch.BankAccount != nil {
			rows[i].BankAccount = *patch.BankAccount
		}
		return
	}
}
