// internal/api/handlers/common.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resaleworks/bookkeeper/internal/domain"
	"github.com/rs/zerolog/log"
)

const actorHeader = "X-Actor-ID"

const dateLayout = "2006-01-02"

// actorFrom reads the acting user's id from the request header. There is no
// auth layer here; the id is trusted upstream.
func actorFrom(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.GetHeader(actorHeader))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": actorHeader + " header is required"})
		return uuid.Nil, false
	}
	actor, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + actorHeader + " header"})
		return uuid.Nil, false
	}
	return actor, true
}

// respondError maps the domain error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidHierarchy):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(value))
}

func parseDatePtr(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseUUIDPtr(value string) (*uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseFloatPtr(value string) (*float64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseSourceType(value string) (domain.SourceType, error) {
	src := domain.SourceType(strings.ToLower(strings.TrimSpace(value)))
	switch src {
	case domain.SourceInventory, domain.SourceSale, domain.SourceRefund,
		domain.SourceExpense, domain.SourceRebate:
		return src, nil
	}
	return "", fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, value)
}
