// Package server exposes the CV gateway over HTTP with gin. Every /api
// route requires a bearer session token.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/internal/history"
)

// TokenParser resolves a bearer token to a user id
type TokenParser interface {
	Parse(token string) (string, error)
}

type Server struct {
	gateway *gateway.Gateway
	history *history.Log
	store   database.Store
	tokens  TokenParser
	log     *slog.Logger
	now     func() time.Time
}

func New(gw *gateway.Gateway, hist *history.Log, store database.Store, tokens TokenParser, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{gateway: gw, history: hist, store: store, tokens: tokens, log: logger, now: time.Now}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", s.requireAuth())
	api.GET("/cvs", s.listCVs)
	api.POST("/cvs", s.createCV)
	api.GET("/cvs/:id", s.getCV)
	api.PUT("/cvs/:id", s.updateCV)
	api.DELETE("/cvs/:id", s.deleteCV)
	api.GET("/cvs/:id/history", s.listHistory)
	api.GET("/stats", s.getStats)
	api.POST("/render", s.render)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// writeError maps gateway errors onto status codes
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gateway.ErrAuthenticationRequired):
		status = http.StatusUnauthorized
	case errors.Is(err, gateway.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gateway.ErrValidationFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrRemoteStore):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.Warn("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
