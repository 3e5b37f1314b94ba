// Package vendorapi registers the provider-shaped /v1 API surface.
package vendorapi

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handlers "github.com/visora-labs/visora-relay/internal/http/api/vendorapi/handlers"
	"github.com/visora-labs/visora-relay/internal/http/middleware"
	"github.com/visora-labs/visora-relay/internal/ratelimit"
	"github.com/visora-labs/visora-relay/internal/search"
	"github.com/visora-labs/visora-relay/internal/shaper"
	"github.com/visora-labs/visora-relay/internal/usagelog"
)

// RegisterVendorRoutes registers the /v1 routes, middleware, and handlers.
func RegisterVendorRoutes(r *gin.Engine, db *gorm.DB, inference handlers.Inference, sh *shaper.Shaper, recorder *usagelog.Recorder, searchClient *search.Client, limiter *ratelimit.Manager) {
	if r == nil || db == nil {
		return
	}

	v1 := r.Group("/v1")

	authed := v1.Group("")
	authed.Use(middleware.APIKeyAuth(db))
	authed.Use(middleware.RateLimit(limiter))

	completionsHandler := handlers.NewCompletionsHandler(db, inference, sh, recorder)
	authed.POST("/chat/completions", completionsHandler.Completions)
	authed.GET("/chat/completions", completionsHandler.Completions)

	modelsHandler := handlers.NewModelsHandler(db, inference, sh)
	authed.GET("/models", modelsHandler.List)
	authed.POST("/models", modelsHandler.List)

	// The generateContent route authenticates Gemini-style inside the
	// handler so its errors use the Gemini envelope.
	v1.POST("/models/:model", modelsHandler.GenerateContent)

	searchHandler := handlers.NewSearchHandler(searchClient)
	authed.POST("/search/google", searchHandler.Google)
}
