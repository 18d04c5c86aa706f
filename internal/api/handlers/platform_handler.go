// internal/api/handlers/platform_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/resaleworks/bookkeeper/internal/repository"
)

// PlatformHandler manages the sale-platform registry. Unlike the taxonomy
// resolver, creation here is not find-or-create: a case-insensitive
// duplicate, shared or personal, is rejected with an explicit conflict.
type PlatformHandler struct {
	platforms repository.PlatformRepository
}

func NewPlatformHandler(platforms repository.PlatformRepository) *PlatformHandler {
	return &PlatformHandler{platforms: platforms}
}

// GetPlatforms lists the shared defaults plus the actor's own platforms.
func (h *PlatformHandler) GetPlatforms(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	platforms, err := h.platforms.ListPlatforms(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if platforms == nil {
		platforms = []domain.SalePlatform{}
	}
	c.JSON(http.StatusOK, platforms)
}

type platformRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreatePlatform adds a personal platform name.
func (h *PlatformHandler) CreatePlatform(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req platformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform name is required"})
		return
	}

	if err := h.rejectDuplicate(c, actor, name, uuid.Nil); err != nil {
		respondError(c, err)
		return
	}

	platform, err := h.platforms.InsertPlatform(c.Request.Context(), domain.SalePlatform{
		Name:    name,
		OwnerID: &actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, platform)
}

// RenamePlatform renames one of the actor's own platforms. Shared defaults
// cannot be renamed.
func (h *PlatformHandler) RenamePlatform(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid platform id"})
		return
	}
	var req platformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform name is required"})
		return
	}

	if err := h.rejectDuplicate(c, actor, name, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.platforms.RenamePlatform(c.Request.Context(), actor, id, name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

// DeletePlatform removes one of the actor's own platforms.
func (h *PlatformHandler) DeletePlatform(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid platform id"})
		return
	}

	if err := h.platforms.DeletePlatform(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// rejectDuplicate enforces case-insensitive uniqueness across the shared
// defaults and the actor's own names. exclude skips the row being renamed.
func (h *PlatformHandler) rejectDuplicate(c *gin.Context, actor uuid.UUID, name string, exclude uuid.UUID) error {
	existing, err := h.platforms.FindPlatformByName(c.Request.Context(), actor, name)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.ID != exclude {
			return fmt.Errorf("%w: platform %q already exists", domain.ErrConflict, p.Name)
		}
	}
	return nil
}
