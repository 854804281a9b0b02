package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "eventforge.io/eventforge/internal/pkg/errors"
	"eventforge.io/eventforge/internal/service"
)

// CreateEvent handles POST /admin/events.
func (s *Server) CreateEvent(c *gin.Context) {
	var draft service.EventDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		_ = c.Error(apperrors.ErrInvalidRequestBody(err))
		return
	}

	ev, err := s.events.Create(c.Request.Context(), draft, actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toEventView(ev))
}

// GetRandomEvent handles GET /events/random.
func (s *Server) GetRandomEvent(c *gin.Context) {
	ev, err := s.events.GetRandom(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toEventView(ev))
}

// GetEventByTitle handles GET /events/by-title?title=.
// The title is matched exactly, case included.
func (s *Server) GetEventByTitle(c *gin.Context) {
	title, ok := c.GetQuery("title")
	if !ok {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidQuery, "query parameter title is required"))
		return
	}

	ev, err := s.events.GetByTitle(c.Request.Context(), title)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toEventView(ev))
}
