// Package app wires configuration, storage, and HTTP surfaces into a
// runnable relay server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/visora-labs/visora-relay/internal/backend"
	"github.com/visora-labs/visora-relay/internal/config"
	"github.com/visora-labs/visora-relay/internal/db"
	"github.com/visora-labs/visora-relay/internal/http/api/front"
	"github.com/visora-labs/visora-relay/internal/http/api/vendorapi"
	"github.com/visora-labs/visora-relay/internal/imagegen"
	"github.com/visora-labs/visora-relay/internal/push"
	"github.com/visora-labs/visora-relay/internal/ratelimit"
	"github.com/visora-labs/visora-relay/internal/search"
	"github.com/visora-labs/visora-relay/internal/shaper"
	"github.com/visora-labs/visora-relay/internal/tts"
	"github.com/visora-labs/visora-relay/internal/usagelog"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the relay server with database-backed components and
// shuts it down cleanly when ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtConfig, _ := config.LoadJWTConfig(configPath)
	providerConfig, _ := config.LoadProviderConfig(configPath)
	rateLimitConfig, _ := config.LoadRateLimitConfig(configPath)

	invoker := backend.NewInvoker(providerConfig)
	responseShaper := shaper.New(shaper.NewSynth(nil), time.Now)
	recorder := usagelog.NewRecorder(conn)
	searchClient := search.NewClient(providerConfig.SerperAPIKey, invoker.Generate, nil)
	ttsClient := tts.NewClient(tts.NewRotation(providerConfig.ElevenLabsKeys), nil)
	pushService := push.NewService(conn, providerConfig, nil)
	generator := imagegen.NewGenerator(conn, nil)
	limiter := ratelimit.NewManager(rateLimitConfig, time.Now, nil)

	engine := gin.New()
	engine.Use(gin.Recovery())

	vendorapi.RegisterVendorRoutes(engine, conn, invoker, responseShaper, recorder, searchClient, limiter)
	front.RegisterFrontRoutes(engine, conn, jwtConfig, invoker, searchClient, ttsClient, pushService, generator)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting relay on %s with config=%s", server.Addr, configPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			log.WithError(errShutdown).Warn("server shutdown failed")
		}
		<-errCh
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}
