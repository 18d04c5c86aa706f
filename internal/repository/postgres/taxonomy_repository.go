package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
)

type taxonomyRepository struct {
	db *DB
}

// NewTaxonomyRepository builds the sqlx-backed taxonomy store.
func NewTaxonomyRepository(db *DB) repository.TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

// taxonomyRow scans one hierarchy row. A NULL owner_id means shared; the
// mapping to an explicit OwnerScope happens here and nowhere else.
type taxonomyRow struct {
	ID        uuid.UUID     `db:"id"`
	ParentID  *uuid.UUID    `db:"parent_id"`
	Name      string        `db:"name"`
	OwnerID   uuid.NullUUID `db:"owner_id"`
	CreatedAt time.Time     `db:"created_at"`
}

func (r taxonomyRow) toNode(level domain.TaxonomyLevel) domain.TaxonomyNode {
	scope := domain.SharedScope()
	if r.OwnerID.Valid {
		scope = domain.PersonalScope(r.OwnerID.UUID)
	}
	return domain.TaxonomyNode{
		ID:        r.ID,
		Level:     level,
		ParentID:  r.ParentID,
		Name:      r.Name,
		Scope:     scope,
		CreatedAt: r.CreatedAt,
	}
}

func levelTable(level domain.TaxonomyLevel) (table, parentCol string, err error) {
	switch level {
	case domain.LevelDepartment:
		return "departments", "", nil
	case domain.LevelCategory:
		return "categories", "department_id", nil
	case domain.LevelSubcategory:
		return "subcategories", "category_id", nil
	default:
		return "", "", fmt.Errorf("%w: unknown taxonomy level %d", domain.ErrInvalidInput, level)
	}
}

func selectColumns(parentCol string) string {
	parent := "NULL::uuid AS parent_id"
	if parentCol != "" {
		parent = parentCol + " AS parent_id"
	}
	return fmt.Sprintf("id, %s, name, owner_id, created_at", parent)
}

func (r *taxonomyRepository) FindByName(ctx context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID, name string) ([]domain.TaxonomyNode, error) {
	table, parentCol, err := levelTable(level)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE is_active AND (owner_id IS NULL OR owner_id = $1) AND LOWER(name) = LOWER($2)`,
		selectColumns(parentCol), table)
	args := []interface{}{actor, name}
	if parentCol != "" {
		query += fmt.Sprintf(" AND %s = $3", parentCol)
		args = append(args, parentID)
	}
	query += " ORDER BY name ASC, created_at ASC"

	var rows []taxonomyRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, translateErr("find "+table+" by name", err)
	}

	nodes := make([]domain.TaxonomyNode, len(rows))
	for i, row := range rows {
		nodes[i] = row.toNode(level)
	}
	return nodes, nil
}

func (r *taxonomyRepository) ListNodes(ctx context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID) ([]domain.TaxonomyNode, error) {
	table, parentCol, err := levelTable(level)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE is_active AND (owner_id IS NULL OR owner_id = $1)`,
		selectColumns(parentCol), table)
	args := []interface{}{actor}
	if parentCol != "" {
		query += fmt.Sprintf(" AND %s = $2", parentCol)
		args = append(args, parentID)
	}
	query += " ORDER BY name ASC"

	var rows []taxonomyRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, translateErr("list "+table, err)
	}

	nodes := make([]domain.TaxonomyNode, len(rows))
	for i, row := range rows {
		nodes[i] = row.toNode(level)
	}
	return nodes, nil
}

func (r *taxonomyRepository) InsertNode(ctx context.Context, node domain.TaxonomyNode) (domain.TaxonomyNode, error) {
	table, parentCol, err := levelTable(node.Level)
	if err != nil {
		return domain.TaxonomyNode{}, err
	}
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}

	var owner uuid.NullUUID
	if !node.Scope.Shared {
		owner = uuid.NullUUID{UUID: node.Scope.Owner, Valid: true}
	}

	var query string
	var args []interface{}
	if parentCol == "" {
		query = fmt.Sprintf(`INSERT INTO %s (id, owner_id, name, is_active, created_at)
			VALUES ($1, $2, $3, TRUE, NOW()) RETURNING created_at`, table)
		args = []interface{}{node.ID, owner, node.Name}
	} else {
		query = fmt.Sprintf(`INSERT INTO %s (id, owner_id, %s, name, is_active, created_at)
			VALUES ($1, $2, $3, $4, TRUE, NOW()) RETURNING created_at`, table, parentCol)
		args = []interface{}{node.ID, owner, node.ParentID, node.Name}
	}

	if err := r.db.GetContext(ctx, &node.CreatedAt, query, args...); err != nil {
		return domain.TaxonomyNode{}, translateErr("insert "+table, err)
	}
	return node, nil
}
