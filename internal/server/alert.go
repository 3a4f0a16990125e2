package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	alertdomain "github.com/fuelsync/fuelsync/internal/alert/domain"
)

func (s *Server) ListAlerts(c *gin.Context) {
	var req alertdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.alertSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) AcknowledgeAlert(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_alert_id", "invalid id"))
		return
	}

	if err := s.alertSvc.Acknowledge(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}

// RunAlertSweeps evaluates every alert rule for the calling tenant on
// demand, outside the scheduler's cadence.
func (s *Server) RunAlertSweeps(c *gin.Context) {
	summary, err := s.alertSvc.RunSweeps(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
