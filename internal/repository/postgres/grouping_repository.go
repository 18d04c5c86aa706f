package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
)

type groupingRepository struct {
	db *DB
}

// NewGroupingRepository builds the analytics-groupings store.
func NewGroupingRepository(db *DB) repository.GroupingRepository {
	return &groupingRepository{db: db}
}

func (r *groupingRepository) ListGroupings(ctx context.Context, actor uuid.UUID) ([]domain.Grouping, error) {
	var groupings []domain.Grouping
	// Names joined in so listings render without extra round trips.
	query := `SELECT g.id, g.owner_id, g.department_id, g.category_id, g.subcategory_id,
			COALESCE(d.name, '') AS department,
			COALESCE(c.name, '') AS category,
			COALESCE(s.name, '') AS subcategory
		FROM analytics_groupings g
		LEFT JOIN departments d ON d.id = g.department_id
		LEFT JOIN categories c ON c.id = g.category_id
		LEFT JOIN subcategories s ON s.id = g.subcategory_id
		WHERE g.owner_id = $1
		ORDER BY g.created_at ASC`
	if err := sqlx.SelectContext(ctx, r.db, &groupings, query, actor); err != nil {
		return nil, translateErr("list groupings", err)
	}
	return groupings, nil
}

func (r *groupingRepository) InsertGrouping(ctx context.Context, g domain.Grouping) (domain.Grouping, error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analytics_groupings (id, owner_id, department_id, category_id, subcategory_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		g.ID, g.OwnerID, g.DepartmentID, g.CategoryID, g.SubcategoryID)
	if err != nil {
		return domain.Grouping{}, translateErr("insert grouping", err)
	}
	return g, nil
}

func (r *groupingRepository) UpdateGrouping(ctx context.Context, actor, id uuid.UUID, departmentID, categoryID, subcategoryID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE analytics_groupings SET department_id = $1, category_id = $2, subcategory_id = $3
		 WHERE owner_id = $4 AND id = $5`,
		departmentID, categoryID, subcategoryID, actor, id)
	if err != nil {
		return translateErr("update grouping", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update grouping: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *groupingRepository) DeleteGrouping(ctx context.Context, actor, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM analytics_groupings WHERE owner_id = $1 AND id = $2`, actor, id)
	if err != nil {
		return translateErr("delete grouping", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete grouping: %w", domain.ErrNotFound)
	}
	return nil
}
