// internal/taxonomy/selection.go
package taxonomy

import (
	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
)

// Field is one level of a cascading taxonomy selection: the text the user
// has entered, the resolved row id if the text was picked from (or resolved
// against) the option list, and the current option list.
type Field struct {
	Text       string
	ResolvedID *uuid.UUID
	Options    []domain.TaxonomyNode
}

func (f *Field) clear() {
	f.Text = ""
	f.ResolvedID = nil
	f.Options = nil
}

// Selection tracks the three-level picker state. Picking or typing a new
// department clears the category and subcategory selections and their
// option lists; one level down works the same. Editing the text of a
// previously resolved field drops its resolved id rather than silently
// keeping the old one.
type Selection struct {
	Department  Field
	Category    Field
	Subcategory Field
}

// SetDepartmentOptions replaces the department option list.
func (s *Selection) SetDepartmentOptions(opts []domain.TaxonomyNode) {
	s.Department.Options = opts
}

// SetCategoryOptions replaces the category option list.
func (s *Selection) SetCategoryOptions(opts []domain.TaxonomyNode) {
	s.Category.Options = opts
}

// SetSubcategoryOptions replaces the subcategory option list.
func (s *Selection) SetSubcategoryOptions(opts []domain.TaxonomyNode) {
	s.Subcategory.Options = opts
}

// PickDepartment selects a department from the option list.
func (s *Selection) PickDepartment(node domain.TaxonomyNode) {
	id := node.ID
	s.Department.Text = node.Name
	s.Department.ResolvedID = &id
	s.Category.clear()
	s.Subcategory.clear()
}

// TypeDepartment records free-typed department text. Unchanged text is a
// no-op; anything else starts a new name.
func (s *Selection) TypeDepartment(text string) {
	if text == s.Department.Text {
		return
	}
	s.Department.Text = text
	s.Department.ResolvedID = nil
	s.Category.clear()
	s.Subcategory.clear()
}

// PickCategory selects a category from the option list.
func (s *Selection) PickCategory(node domain.TaxonomyNode) {
	id := node.ID
	s.Category.Text = node.Name
	s.Category.ResolvedID = &id
	s.Subcategory.clear()
}

// TypeCategory records free-typed category text.
func (s *Selection) TypeCategory(text string) {
	if text == s.Category.Text {
		return
	}
	s.Category.Text = text
	s.Category.ResolvedID = nil
	s.Subcategory.clear()
}

// PickSubcategory selects a subcategory from the option list.
func (s *Selection) PickSubcategory(node domain.TaxonomyNode) {
	id := node.ID
	s.Subcategory.Text = node.Name
	s.Subcategory.ResolvedID = &id
}

// TypeSubcategory records free-typed subcategory text.
func (s *Selection) TypeSubcategory(text string) {
	if text == s.Subcategory.Text {
		return
	}
	s.Subcategory.Text = text
	s.Subcategory.ResolvedID = nil
}
