package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
)

func (s *Server) ListSales(c *gin.Context) {
	req := saledomain.ListRequest{
		StationID:     strings.TrimSpace(c.Query("station_id")),
		NozzleID:      strings.TrimSpace(c.Query("nozzle_id")),
		CreditorID:    strings.TrimSpace(c.Query("creditor_id")),
		PaymentMethod: saledomain.PaymentMethod(strings.TrimSpace(c.Query("payment_method"))),
	}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("from", "invalid_range", "expected RFC 3339 timestamp"))
			return
		}
		req.From = &t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("to", "invalid_range", "expected RFC 3339 timestamp"))
			return
		}
		req.To = &t
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "expected integer"))
			return
		}
		req.Limit = n
	}

	items, err := s.saleSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) TodaySaleTotals(c *gin.Context) {
	totals, err := s.saleSvc.TodayTotals(c.Request.Context(), strings.TrimSpace(c.Param("stationId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}
