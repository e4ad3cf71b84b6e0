// README: Telemetry endpoints: position ingest, nearby search, history.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"convoy/internal/modules/telemetry"
	"convoy/internal/types"
)

type TelemetryHandler struct {
	telemetry *telemetry.Service
}

func NewTelemetryHandler(svc *telemetry.Service) *TelemetryHandler {
	return &TelemetryHandler{telemetry: svc}
}

type ingestRequest struct {
	Lat      *float64 `json:"lat" binding:"required"`
	Lng      *float64 `json:"lng" binding:"required"`
	SpeedKph float64  `json:"speed_kph"`
}

func (h *TelemetryHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.telemetry.Ingest(c.Request.Context(), telemetry.Update{
		VehicleID: types.ID(c.Param("id")),
		Position:  types.Point{Lat: *req.Lat, Lng: *req.Lng},
		SpeedKph:  req.SpeedKph,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *TelemetryHandler) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(c, http.StatusBadRequest, "lat and lng required")
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "10"), 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid radius_km")
		return
	}
	vehicles, err := h.telemetry.Nearby(c.Request.Context(), types.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

type snapshotResponse struct {
	Position   types.Point `json:"position"`
	SpeedKph   float64     `json:"speed_kph"`
	RecordedAt time.Time   `json:"recorded_at"`
}

func (h *TelemetryHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	snapshots, err := h.telemetry.History(c.Request.Context(), types.ID(c.Param("id")), limit)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]snapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, snapshotResponse{Position: s.Position, SpeedKph: s.SpeedKph, RecordedAt: s.RecordedAt})
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": c.Param("id"), "snapshots": out})
}
