// internal/taxonomy/resolver.go
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/rs/zerolog/log"
)

// Resolver provides find-or-create semantics over the department/category/
// subcategory hierarchy. Ensure is idempotent: repeated calls with the same
// case-insensitive name and parent return the same row and create nothing.
type Resolver struct {
	repo repository.TaxonomyRepository
}

func NewResolver(repo repository.TaxonomyRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Ensure returns the existing shared-or-personal row matching name within
// the parent scope, or inserts a new personal row for the actor. A
// duplicate-key race on insert falls back to re-resolving; it never
// surfaces as an error.
func (r *Resolver) Ensure(ctx context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID, name string) (domain.TaxonomyNode, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.TaxonomyNode{}, fmt.Errorf("%w: %s name required", domain.ErrInvalidInput, level)
	}
	if level.RequiresParent() && parentID == nil {
		return domain.TaxonomyNode{}, fmt.Errorf("%w: %s requires a parent id", domain.ErrInvalidHierarchy, level)
	}

	if node, ok, err := r.lookup(ctx, actor, level, parentID, name); err != nil {
		return domain.TaxonomyNode{}, err
	} else if ok {
		return node, nil
	}

	inserted, err := r.repo.InsertNode(ctx, domain.TaxonomyNode{
		Level:    level,
		ParentID: parentID,
		Name:     name,
		Scope:    domain.PersonalScope(actor),
	})
	if err == nil {
		return inserted, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return domain.TaxonomyNode{}, err
	}

	// Lost a creation race; the row exists now, so resolve to it.
	log.Debug().Str("level", level.String()).Str("name", name).Msg("taxonomy insert conflict, re-resolving")
	node, ok, err := r.lookup(ctx, actor, level, parentID, name)
	if err != nil {
		return domain.TaxonomyNode{}, err
	}
	if !ok {
		return domain.TaxonomyNode{}, fmt.Errorf("ensure %s %q: conflicting row not visible: %w", level, name, domain.ErrStoreUnavailable)
	}
	return node, nil
}

func (r *Resolver) lookup(ctx context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID, name string) (domain.TaxonomyNode, bool, error) {
	matches, err := r.repo.FindByName(ctx, actor, level, parentID, name)
	if err != nil {
		return domain.TaxonomyNode{}, false, fmt.Errorf("ensure %s %q: %w", level, name, err)
	}
	if len(matches) == 0 {
		return domain.TaxonomyNode{}, false, nil
	}
	// FindByName orders by name then created_at, so the first match is the
	// same row every time.
	return matches[0], true, nil
}

// Triple is the result of resolving a full hierarchy path.
type Triple struct {
	Department  domain.TaxonomyNode
	Category    domain.TaxonomyNode
	Subcategory domain.TaxonomyNode
}

// EnsureTriple resolves the department, then the category under it, then
// the subcategory, threading each resolved id down as the next level's
// parent.
func (r *Resolver) EnsureTriple(ctx context.Context, actor uuid.UUID, department, category, subcategory string) (Triple, error) {
	var t Triple
	var err error

	t.Department, err = r.Ensure(ctx, actor, domain.LevelDepartment, nil, department)
	if err != nil {
		return Triple{}, err
	}
	t.Category, err = r.Ensure(ctx, actor, domain.LevelCategory, &t.Department.ID, category)
	if err != nil {
		return Triple{}, err
	}
	t.Subcategory, err = r.Ensure(ctx, actor, domain.LevelSubcategory, &t.Category.ID, subcategory)
	if err != nil {
		return Triple{}, err
	}
	return t, nil
}

// Options lists the pickable nodes at one level for the given parent.
func (r *Resolver) Options(ctx context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID) ([]domain.TaxonomyNode, error) {
	if level.RequiresParent() && parentID == nil {
		// No parent selected yet: nothing to offer, not an error.
		return nil, nil
	}
	return r.repo.ListNodes(ctx, actor, level, parentID)
}
