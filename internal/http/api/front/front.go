// Package front registers the product-facing /api surface.
package front

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/config"
	handlers "github.com/visora-labs/visora-relay/internal/http/api/front/handlers"
	"github.com/visora-labs/visora-relay/internal/http/middleware"
	"github.com/visora-labs/visora-relay/internal/imagegen"
	"github.com/visora-labs/visora-relay/internal/push"
	"github.com/visora-labs/visora-relay/internal/search"
	"github.com/visora-labs/visora-relay/internal/tts"
)

// RegisterFrontRoutes registers the /api routes, middleware, and handlers.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, inference handlers.Inference, searchClient *search.Client, ttsClient *tts.Client, pushService *push.Service, generator *imagegen.Generator) {
	if r == nil || db == nil {
		return
	}

	r.GET("/healthz", handlers.Health)

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	keygenHandler := handlers.NewKeygenHandler(db)
	api.POST("/v1/keys/generate", keygenHandler.Generate)

	// Image IDs are unguessable nanoids, so reads need no session.
	imageHandler := handlers.NewImageHandler(generator)
	api.GET("/images/:id", imageHandler.Get)

	statsHandler := handlers.NewStatsHandler(db)
	api.GET("/stats", statsHandler.Stats)

	authed := api.Group("")
	authed.Use(middleware.SessionAuth(db, jwtCfg))

	appKeyHandler := handlers.NewAppKeyHandler(db)
	authed.GET("/app-keys", appKeyHandler.List)
	authed.POST("/app-keys", appKeyHandler.Create)
	authed.DELETE("/app-keys", appKeyHandler.Delete)

	chatHandler := handlers.NewChatHandler(db, inference, searchClient, generator)
	authed.POST("/chat", chatHandler.Chat)

	ttsHandler := handlers.NewTTSHandler(ttsClient)
	authed.POST("/tts", ttsHandler.Synthesize)

	pushHandler := handlers.NewPushHandler(pushService)
	authed.POST("/push/subscribe", pushHandler.Subscribe)
	authed.POST("/push/unsubscribe", pushHandler.Unsubscribe)
	authed.POST("/notifications/send", pushHandler.Send)
}
