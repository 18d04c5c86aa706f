package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
)

type platformRepository struct {
	db *DB
}

// NewPlatformRepository builds the sale-platform registry store.
func NewPlatformRepository(db *DB) repository.PlatformRepository {
	return &platformRepository{db: db}
}

const platformColumns = `id, name, is_default, owner_id, created_at`

func (r *platformRepository) ListPlatforms(ctx context.Context, actor uuid.UUID) ([]domain.SalePlatform, error) {
	var platforms []domain.SalePlatform
	// User-owned names first, then the shared defaults.
	query := fmt.Sprintf(`SELECT %s FROM sale_platforms
		WHERE owner_id = $1 OR owner_id IS NULL
		ORDER BY (owner_id IS NULL) ASC, name ASC`, platformColumns)
	if err := sqlx.SelectContext(ctx, r.db, &platforms, query, actor); err != nil {
		return nil, translateErr("list sale platforms", err)
	}
	return platforms, nil
}

func (r *platformRepository) FindPlatformByName(ctx context.Context, actor uuid.UUID, name string) ([]domain.SalePlatform, error) {
	var platforms []domain.SalePlatform
	query := fmt.Sprintf(`SELECT %s FROM sale_platforms
		WHERE (owner_id = $1 OR owner_id IS NULL) AND LOWER(name) = LOWER($2)
		ORDER BY created_at ASC`, platformColumns)
	if err := sqlx.SelectContext(ctx, r.db, &platforms, query, actor, name); err != nil {
		return nil, translateErr("find sale platform", err)
	}
	return platforms, nil
}

func (r *platformRepository) InsertPlatform(ctx context.Context, p domain.SalePlatform) (domain.SalePlatform, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	var out domain.SalePlatform
	query := fmt.Sprintf(`INSERT INTO sale_platforms (id, name, is_default, owner_id, created_at)
		VALUES ($1, $2, $3, $4, NOW()) RETURNING %s`, platformColumns)
	if err := r.db.GetContext(ctx, &out, query, p.ID, p.Name, p.IsDefault, p.OwnerID); err != nil {
		return domain.SalePlatform{}, translateErr("insert sale platform", err)
	}
	return out, nil
}

func (r *platformRepository) RenamePlatform(ctx context.Context, actor, id uuid.UUID, name string) error {
	// Shared defaults are not editable; owner_id must match.
	res, err := r.db.ExecContext(ctx,
		`UPDATE sale_platforms SET name = $1 WHERE id = $2 AND owner_id = $3`, name, id, actor)
	if err != nil {
		return translateErr("rename sale platform", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rename sale platform: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *platformRepository) DeletePlatform(ctx context.Context, actor, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sale_platforms WHERE id = $1 AND owner_id = $2`, id, actor)
	if err != nil {
		return translateErr("delete sale platform", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete sale platform: %w", domain.ErrNotFound)
	}
	return nil
}
