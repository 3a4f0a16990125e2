package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

func (s *Server) CreateFuelPrice(c *gin.Context) {
	var req fuelpricedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.priceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListFuelPrices(c *gin.Context) {
	var req fuelpricedomain.ListRequest
	req.StationID = strings.TrimSpace(c.Query("station_id"))
	req.FuelType = stationdomain.FuelType(strings.TrimSpace(c.Query("fuel_type")))

	items, err := s.priceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetFuelPriceAt answers "which price applied at this instant". The
// instant defaults to now.
func (s *Server) GetFuelPriceAt(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	stationID, err := snowflake.ParseString(strings.TrimSpace(c.Query("station_id")))
	if err != nil {
		AbortWithError(c, newValidationError("station_id", "invalid_station", "invalid station id"))
		return
	}

	fuelType := stationdomain.FuelType(strings.TrimSpace(c.Query("fuel_type")))
	if fuelType == "" {
		AbortWithError(c, newValidationError("fuel_type", "invalid_fuel_type", "fuel type is required"))
		return
	}

	at := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("at")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("at", "invalid_at", "expected RFC 3339 timestamp"))
			return
		}
		at = parsed.UTC()
	}

	item, err := s.priceSvc.GetPriceAt(c.Request.Context(), tenantID, stationID, fuelType, at)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteFuelPrice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.priceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
