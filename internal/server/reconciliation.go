package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
)

type runReconciliationRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

// RunReconciliation computes the station's day totals and finalizes the
// day in one shot. Re-running a finalized day is a conflict.
func (s *Server) RunReconciliation(c *gin.Context) {
	var body runReconciliationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.reconSvc.Run(c.Request.Context(), recondomain.RunRequest{
		StationID: strings.TrimSpace(c.Param("stationId")),
		Date:      strings.TrimSpace(body.Date),
	})
	if err != nil {
		s.obsMetrics.RecordReconciliationRun(c.Request.Context(), "error")
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordReconciliationRun(c.Request.Context(), "finalized")
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) GetReconciliation(c *gin.Context) {
	item, err := s.reconSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("stationId")), strings.TrimSpace(c.Query("date")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ListReconciliations(c *gin.Context) {
	var req recondomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.reconSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
