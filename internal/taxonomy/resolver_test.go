package taxonomy

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaxonomyRepo struct {
	nodes []domain.TaxonomyNode

	// conflictNext makes the next InsertNode fail with ErrConflict while
	// still recording the competing row, simulating a concurrent creator.
	conflictNext bool
	insertErr    error
	inserts      int
}

func (f *fakeTaxonomyRepo) FindByName(_ context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID, name string) ([]domain.TaxonomyNode, error) {
	var matches []domain.TaxonomyNode
	for _, n := range f.nodes {
		if n.Level != level {
			continue
		}
		if !n.Scope.Shared && n.Scope.Owner != actor {
			continue
		}
		if !sameParent(n.ParentID, parentID) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(n.Name), strings.TrimSpace(name)) {
			continue
		}
		matches = append(matches, n)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (f *fakeTaxonomyRepo) ListNodes(_ context.Context, actor uuid.UUID, level domain.TaxonomyLevel, parentID *uuid.UUID) ([]domain.TaxonomyNode, error) {
	var out []domain.TaxonomyNode
	for _, n := range f.nodes {
		if n.Level == level && sameParent(n.ParentID, parentID) && (n.Scope.Shared || n.Scope.Owner == actor) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeTaxonomyRepo) InsertNode(_ context.Context, node domain.TaxonomyNode) (domain.TaxonomyNode, error) {
	if f.insertErr != nil {
		return domain.TaxonomyNode{}, f.insertErr
	}
	node.ID = uuid.New()
	node.CreatedAt = time.Now()
	if f.conflictNext {
		f.conflictNext = false
		// The competing creator's row lands under a different owner.
		winner := node
		winner.Scope = domain.SharedScope()
		f.nodes = append(f.nodes, winner)
		return domain.TaxonomyNode{}, domain.ErrConflict
	}
	f.inserts++
	f.nodes = append(f.nodes, node)
	return node, nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func TestEnsureCreatesThenReturnsSameRow(t *testing.T) {
	repo := &fakeTaxonomyRepo{}
	r := NewResolver(repo)
	actor := uuid.New()
	ctx := context.Background()

	first, err := r.Ensure(ctx, actor, domain.LevelDepartment, nil, "  Clothing ")
	require.NoError(t, err)
	assert.Equal(t, "Clothing", first.Name)
	assert.False(t, first.Scope.Shared)
	assert.Equal(t, actor, first.Scope.Owner)

	second, err := r.Ensure(ctx, actor, domain.LevelDepartment, nil, "clothing")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.inserts, "second ensure must not create a duplicate")
}

func TestEnsurePrefersSharedRow(t *testing.T) {
	actor := uuid.New()
	shared := domain.TaxonomyNode{
		ID:        uuid.New(),
		Level:     domain.LevelDepartment,
		Name:      "Books",
		Scope:     domain.SharedScope(),
		CreatedAt: time.Now().Add(-time.Hour),
	}
	repo := &fakeTaxonomyRepo{nodes: []domain.TaxonomyNode{shared}}
	r := NewResolver(repo)

	got, err := r.Ensure(context.Background(), actor, domain.LevelDepartment, nil, "BOOKS")
	require.NoError(t, err)
	assert.Equal(t, shared.ID, got.ID)
	assert.Zero(t, repo.inserts)
}

func TestEnsureEmptyNameRejectedBeforeStore(t *testing.T) {
	r := NewResolver(&fakeTaxonomyRepo{})

	_, err := r.Ensure(context.Background(), uuid.New(), domain.LevelDepartment, nil, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnsureMissingParentIsInvalidHierarchy(t *testing.T) {
	r := NewResolver(&fakeTaxonomyRepo{})

	_, err := r.Ensure(context.Background(), uuid.New(), domain.LevelCategory, nil, "Fiction")
	assert.ErrorIs(t, err, domain.ErrInvalidHierarchy)

	_, err = r.Ensure(context.Background(), uuid.New(), domain.LevelSubcategory, nil, "Hardcover")
	assert.ErrorIs(t, err, domain.ErrInvalidHierarchy)
}

func TestEnsureRecoversFromInsertConflict(t *testing.T) {
	repo := &fakeTaxonomyRepo{conflictNext: true}
	r := NewResolver(repo)

	got, err := r.Ensure(context.Background(), uuid.New(), domain.LevelDepartment, nil, "Media")
	require.NoError(t, err, "conflict must be recovered, never surfaced")
	assert.Equal(t, "Media", got.Name)
}

func TestEnsureTripleThreadsParents(t *testing.T) {
	repo := &fakeTaxonomyRepo{}
	r := NewResolver(repo)
	actor := uuid.New()

	triple, err := r.EnsureTriple(context.Background(), actor, "Clothing", "Outerwear", "Jackets")
	require.NoError(t, err)

	require.NotNil(t, triple.Category.ParentID)
	assert.Equal(t, triple.Department.ID, *triple.Category.ParentID)
	require.NotNil(t, triple.Subcategory.ParentID)
	assert.Equal(t, triple.Category.ID, *triple.Subcategory.ParentID)
}

func TestSelectionDepartmentChangeClearsDescendants(t *testing.T) {
	var sel Selection
	dept := domain.TaxonomyNode{ID: uuid.New(), Name: "Clothing", Level: domain.LevelDepartment}
	cat := domain.TaxonomyNode{ID: uuid.New(), Name: "Outerwear", Level: domain.LevelCategory}
	sub := domain.TaxonomyNode{ID: uuid.New(), Name: "Jackets", Level: domain.LevelSubcategory}

	sel.PickDepartment(dept)
	sel.SetCategoryOptions([]domain.TaxonomyNode{cat})
	sel.PickCategory(cat)
	sel.SetSubcategoryOptions([]domain.TaxonomyNode{sub})
	sel.PickSubcategory(sub)

	sel.PickDepartment(domain.TaxonomyNode{ID: uuid.New(), Name: "Media", Level: domain.LevelDepartment})

	assert.Empty(t, sel.Category.Text)
	assert.Nil(t, sel.Category.ResolvedID)
	assert.Empty(t, sel.Category.Options)
	assert.Empty(t, sel.Subcategory.Text)
	assert.Nil(t, sel.Subcategory.ResolvedID)
	assert.Empty(t, sel.Subcategory.Options)
}

func TestSelectionTypingDropsResolvedID(t *testing.T) {
	var sel Selection
	dept := domain.TaxonomyNode{ID: uuid.New(), Name: "Clothing", Level: domain.LevelDepartment}
	sel.PickDepartment(dept)
	require.NotNil(t, sel.Department.ResolvedID)

	// Unchanged text keeps the selection.
	sel.TypeDepartment("Clothing")
	assert.NotNil(t, sel.Department.ResolvedID)

	// Edited text starts a new name.
	sel.TypeDepartment("Clothin")
	assert.Nil(t, sel.Department.ResolvedID)
	assert.Equal(t, "Clothin", sel.Department.Text)
}

func TestSelectionCategoryChangeClearsSubcategory(t *testing.T) {
	var sel Selection
	sel.PickDepartment(domain.TaxonomyNode{ID: uuid.New(), Name: "Clothing"})
	sel.PickCategory(domain.TaxonomyNode{ID: uuid.New(), Name: "Outerwear"})
	sel.PickSubcategory(domain.TaxonomyNode{ID: uuid.New(), Name: "Jackets"})

	sel.TypeCategory("Knitwear")

	assert.Nil(t, sel.Category.ResolvedID)
	assert.Empty(t, sel.Subcategory.Text)
	assert.Nil(t, sel.Subcategory.ResolvedID)
}
