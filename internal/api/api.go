// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/resaleworks/bookkeeper/internal/api/handlers"
	"github.com/resaleworks/bookkeeper/internal/api/middleware"
)

// Handlers bundles the wired handler set for the router. Nil entries skip
// their route group.
type Handlers struct {
	Ledger   *handlers.LedgerHandler
	Reports  *handlers.ReportHandler
	Records  *handlers.RecordsHandler
	Taxonomy *handlers.TaxonomyHandler
	Platform *handlers.PlatformHandler
}

func NewRouter(h *Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if h == nil {
		return router
	}

	if h.Ledger != nil {
		transactionsGroup := apiGroup.Group("/transactions")
		{
			transactionsGroup.GET("", h.Ledger.GetTransactions)
			transactionsGroup.GET("/export", h.Ledger.ExportTransactions)
		}
	}

	if h.Reports != nil {
		apiGroup.GET("/reports/:year", h.Reports.GetYearSeries)
	}

	if h.Records != nil {
		apiGroup.POST("/inventory", h.Records.CreateInventory)
		apiGroup.POST("/sales", h.Records.CreateSale)
		apiGroup.POST("/refunds", h.Records.CreateRefund)
		apiGroup.POST("/expenses", h.Records.CreateExpense)
		apiGroup.POST("/rebates", h.Records.CreateRebate)

		recordsGroup := apiGroup.Group("/records/:source/:id")
		{
			recordsGroup.PUT("", h.Records.UpdateRecord)
			recordsGroup.DELETE("", h.Records.DeleteRecord)
			recordsGroup.POST("/receipt", h.Records.UploadReceipt)
		}
	}

	if h.Taxonomy != nil {
		taxonomyGroup := apiGroup.Group("/taxonomy")
		{
			taxonomyGroup.GET("/options", h.Taxonomy.GetOptions)
			taxonomyGroup.POST("/ensure", h.Taxonomy.EnsureNode)
			taxonomyGroup.POST("/ensure_triple", h.Taxonomy.EnsureTriple)
		}

		groupingsGroup := apiGroup.Group("/groupings")
		{
			groupingsGroup.GET("", h.Taxonomy.GetGroupings)
			groupingsGroup.POST("", h.Taxonomy.CreateGrouping)
			groupingsGroup.PUT("/:id", h.Taxonomy.UpdateGrouping)
			groupingsGroup.DELETE("/:id", h.Taxonomy.DeleteGrouping)
		}
	}

	if h.Platform != nil {
		platformsGroup := apiGroup.Group("/platforms")
		{
			platformsGroup.GET("", h.Platform.GetPlatforms)
			platformsGroup.POST("", h.Platform.CreatePlatform)
			platformsGroup.PUT("/:id", h.Platform.RenamePlatform)
			platformsGroup.DELETE("/:id", h.Platform.DeletePlatform)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
