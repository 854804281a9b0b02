// Package handlers implements the eventforge HTTP API on gin.
//
// Handlers never render errors themselves: they call c.Error and let
// middleware.ErrorHandler produce the response body.
//
// Import Path: eventforge.io/eventforge/internal/api/handlers
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"eventforge.io/eventforge/internal/domain"
	"eventforge.io/eventforge/internal/repository"
	"eventforge.io/eventforge/internal/service"
)

// EventService is the use-case surface the handlers call.
type EventService interface {
	Create(ctx context.Context, draft service.EventDraft, actor string) (domain.Event, error)
	GetRandom(ctx context.Context) (domain.Event, error)
	GetByTitle(ctx context.Context, title string) (domain.Event, error)
}

// AuditHistory reads the audit trail of one event.
type AuditHistory interface {
	History(ctx context.Context, eventID int64) ([]repository.AuditRecord, error)
}

// Server holds the dependencies of all API handlers.
type Server struct {
	events EventService
	audit  AuditHistory
	store  repository.Pinger
}

// ServerDeps holds all dependencies for creating a Server.
// Audit may be nil; the audit route then answers 404.
type ServerDeps struct {
	Events EventService
	Audit  AuditHistory
	Store  repository.Pinger
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		events: deps.Events,
		audit:  deps.Audit,
		store:  deps.Store,
	}
}

// RegisterRoutes mounts every handler on r, which is expected to be the
// /api/v1 group. Auth is applied by the caller.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/health/live", s.GetLiveness)
	r.GET("/health/ready", s.GetReadiness)

	r.GET("/events/random", s.GetRandomEvent)
	r.GET("/events/by-title", s.GetEventByTitle)

	r.POST("/admin/events", s.CreateEvent)
	r.GET("/admin/events/:id/audit", s.ListEventAudit)
}

// actorFromCtx extracts the authenticated user ID from the request context.
func actorFromCtx(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return uid
	}
	return "anonymous"
}
