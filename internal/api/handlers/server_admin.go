package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "eventforge.io/eventforge/internal/pkg/errors"
)

// ListEventAudit handles GET /admin/events/:id/audit.
func (s *Server) ListEventAudit(c *gin.Context) {
	if s.audit == nil {
		_ = c.Error(apperrors.NotFound("AUDIT_UNAVAILABLE", "audit trail is not configured"))
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidPath, "event id must be a positive integer"))
		return
	}

	recs, err := s.audit.History(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toAuditListView(recs))
}
