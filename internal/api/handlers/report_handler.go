// internal/api/handlers/report_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/resaleworks/bookkeeper/internal/cache"
	"github.com/resaleworks/bookkeeper/internal/report"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves the monthly profit-and-loss series. A cache failure
// is never fatal; the series is rebuilt from the store.
type ReportHandler struct {
	reporter *report.Reporter
	cache    cache.YearSeriesCache
}

func NewReportHandler(reporter *report.Reporter, seriesCache cache.YearSeriesCache) *ReportHandler {
	return &ReportHandler{reporter: reporter, cache: seriesCache}
}

// GetYearSeries returns the twelve-bucket series plus totals for one year.
func (h *ReportHandler) GetYearSeries(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	if series, hit, err := h.cache.GetSeries(c.Request.Context(), actor, year); err != nil {
		log.Warn().Err(err).Int("year", year).Msg("year series cache read failed")
	} else if hit {
		c.JSON(http.StatusOK, series)
		return
	}

	series, err := h.reporter.BuildYearSeries(c.Request.Context(), actor, year)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.cache.SetSeries(c.Request.Context(), actor, series); err != nil {
		log.Warn().Err(err).Int("year", year).Msg("year series cache write failed")
	}
	c.JSON(http.StatusOK, series)
}
