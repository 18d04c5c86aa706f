// internal/api/handlers/taxonomy_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
	"github.com/resaleworks/bookkeeper/internal/taxonomy"
)

// TaxonomyHandler exposes the hierarchy resolver and the persisted analytics
// groupings.
type TaxonomyHandler struct {
	resolver  *taxonomy.Resolver
	groupings repository.GroupingRepository
}

func NewTaxonomyHandler(resolver *taxonomy.Resolver, groupings repository.GroupingRepository) *TaxonomyHandler {
	return &TaxonomyHandler{resolver: resolver, groupings: groupings}
}

// GetOptions lists the pickable nodes at one level. Child levels with no
// parent selected return an empty list, not an error.
func (h *TaxonomyHandler) GetOptions(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	level, err := parseLevel(c.Query("level"))
	if err != nil {
		respondError(c, err)
		return
	}
	parentID, err := parseUUIDPtr(c.Query("parent_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
		return
	}

	nodes, err := h.resolver.Options(c.Request.Context(), actor, level, parentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if nodes == nil {
		nodes = []domain.TaxonomyNode{}
	}
	c.JSON(http.StatusOK, nodes)
}

type ensureRequest struct {
	Level    string `json:"level" binding:"required"`
	ParentID string `json:"parent_id"`
	Name     string `json:"name" binding:"required"`
}

// EnsureNode find-or-creates a single node. Repeated calls with the same
// name and parent return the same row.
func (h *TaxonomyHandler) EnsureNode(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req ensureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level, err := parseLevel(req.Level)
	if err != nil {
		respondError(c, err)
		return
	}
	parentID, err := parseUUIDPtr(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
		return
	}

	node, err := h.resolver.Ensure(c.Request.Context(), actor, level, parentID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

type ensureTripleRequest struct {
	Department  string `json:"department" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory" binding:"required"`
}

// EnsureTriple resolves a full department/category/subcategory path in one
// call, threading each resolved id down as the next parent.
func (h *TaxonomyHandler) EnsureTriple(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req ensureTripleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	triple, err := h.resolver.EnsureTriple(c.Request.Context(), actor, req.Department, req.Category, req.Subcategory)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, triple)
}

// GetGroupings lists the actor's analytics groupings with names joined in.
func (h *TaxonomyHandler) GetGroupings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	groupings, err := h.groupings.ListGroupings(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if groupings == nil {
		groupings = []domain.Grouping{}
	}
	c.JSON(http.StatusOK, groupings)
}

type groupingRequest struct {
	Department  string `json:"department" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory" binding:"required"`
}

// CreateGrouping resolves the three names and persists the id triple.
func (h *TaxonomyHandler) CreateGrouping(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req groupingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	triple, err := h.resolver.EnsureTriple(c.Request.Context(), actor, req.Department, req.Category, req.Subcategory)
	if err != nil {
		respondError(c, err)
		return
	}
	grouping, err := h.groupings.InsertGrouping(c.Request.Context(), domain.Grouping{
		OwnerID:       actor,
		DepartmentID:  triple.Department.ID,
		CategoryID:    triple.Category.ID,
		SubcategoryID: triple.Subcategory.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, grouping)
}

// UpdateGrouping repoints an existing grouping at a new resolved triple.
func (h *TaxonomyHandler) UpdateGrouping(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grouping id"})
		return
	}
	var req groupingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	triple, err := h.resolver.EnsureTriple(c.Request.Context(), actor, req.Department, req.Category, req.Subcategory)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.groupings.UpdateGrouping(c.Request.Context(), actor, id,
		triple.Department.ID, triple.Category.ID, triple.Subcategory.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

// DeleteGrouping removes a grouping.
func (h *TaxonomyHandler) DeleteGrouping(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grouping id"})
		return
	}

	if err := h.groupings.DeleteGrouping(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func parseLevel(value string) (domain.TaxonomyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "department", "departments":
		return domain.LevelDepartment, nil
	case "category", "categories":
		return domain.LevelCategory, nil
	case "subcategory", "subcategories":
		return domain.LevelSubcategory, nil
	}
	return 0, fmt.Errorf("%w: unknown taxonomy level %q", domain.ErrInvalidInput, value)
}
