package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cashreportdomain "github.com/fuelsync/fuelsync/internal/cashreport/domain"
)

func (s *Server) CreateCashReport(c *gin.Context) {
	var req cashreportdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.cashReportSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListCashReports(c *gin.Context) {
	var req cashreportdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.cashReportSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
