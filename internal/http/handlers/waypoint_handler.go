// README: Waypoint endpoints: itinerary stops and arrival/departure marks.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"convoy/internal/modules/waypoint"
	"convoy/internal/types"
)

type WaypointHandler struct {
	waypoints *waypoint.Service
}

func NewWaypointHandler(svc *waypoint.Service) *WaypointHandler {
	return &WaypointHandler{waypoints: svc}
}

type waypointResponse struct {
	TripID      string      `json:"trip_id"`
	Seq         int         `json:"seq"`
	Label       string      `json:"label"`
	Position    types.Point `json:"position"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty"`
	ArrivedAt   *time.Time  `json:"arrived_at,omitempty"`
	DepartedAt  *time.Time  `json:"departed_at,omitempty"`
}

func toWaypointResponse(w *waypoint.Waypoint) waypointResponse {
	return waypointResponse{
		TripID:      string(w.TripID),
		Seq:         w.Seq,
		Label:       w.Label,
		Position:    w.Position,
		ScheduledAt: w.ScheduledAt,
		ArrivedAt:   w.ArrivedAt,
		DepartedAt:  w.DepartedAt,
	}
}

type addWaypointRequest struct {
	Seq         *int        `json:"seq" binding:"required"`
	Label       string      `json:"label" binding:"required"`
	Position    types.Point `json:"position"`
	ScheduledAt *time.Time  `json:"scheduled_at"`
}

func (h *WaypointHandler) Add(c *gin.Context) {
	var req addWaypointRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Seq == nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	w, err := h.waypoints.Add(c.Request.Context(), waypoint.AddCommand{
		TripID:      types.ID(c.Param("id")),
		Seq:         *req.Seq,
		Label:       req.Label,
		Position:    req.Position,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWaypointResponse(w))
}

func (h *WaypointHandler) List(c *gin.Context) {
	ws, err := h.waypoints.ListByTrip(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]waypointResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, toWaypointResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"waypoints": out})
}

func (h *WaypointHandler) MarkArrived(c *gin.Context) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid sequence number")
		return
	}
	w, err := h.waypoints.MarkArrived(c.Request.Context(), types.ID(c.Param("id")), seq)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWaypointResponse(w))
}

func (h *WaypointHandler) MarkDeparted(c *gin.Context) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid sequence number")
		return
	}
	w, err := h.waypoints.MarkDeparted(c.Request.Context(), types.ID(c.Param("id")), seq)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWaypointResponse(w))
}
