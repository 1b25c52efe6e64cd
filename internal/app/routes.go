package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/readaloud/core/internal/modules/generation"
	"github.com/readaloud/core/internal/modules/reading"
	"github.com/readaloud/core/internal/modules/render"
	"github.com/readaloud/core/internal/pkg/response"
)

func (a *App) registerRoutes(ctx context.Context) error {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	gateway, err := generation.New(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("generation: %w", err)
	}

	store := reading.NewGormStore(a.db, a.logger)
	orchestrator := reading.NewOrchestrator(store, gateway, reading.Options{
		RelatedTopicLimit: a.cfg.Reader.RelatedTopicLimit,
	}, a.logger)
	projector := reading.NewProjector(store, a.cfg.Reader.HistoryTitleLength)

	v1 := r.Group("/api/v1")
	v1.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	reading.NewHandler(orchestrator, store, projector, a.logger).RegisterRoutes(v1)
	render.NewHandler(store).RegisterRoutes(v1)

	return nil
}
