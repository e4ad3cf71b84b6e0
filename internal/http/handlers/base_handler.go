// README: Shared handler utilities: JSON error shape and domain error mapping.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"convoy/internal/modules/fleet"
	"convoy/internal/modules/ledger"
	"convoy/internal/modules/maintenance"
	"convoy/internal/modules/safety"
	"convoy/internal/modules/telemetry"
	"convoy/internal/modules/trip"
	"convoy/internal/modules/waypoint"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinels onto HTTP status codes. Validation is
// 400, missing entities 404, state conflicts 409, policy rejections 422.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrNotFound),
		errors.Is(err, fleet.ErrNotFound),
		errors.Is(err, waypoint.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, maintenance.ErrNotFound),
		errors.Is(err, safety.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrBadRequest),
		errors.Is(err, fleet.ErrBadRequest),
		errors.Is(err, waypoint.ErrBadRequest),
		errors.Is(err, ledger.ErrBadRequest),
		errors.Is(err, maintenance.ErrBadRequest),
		errors.Is(err, telemetry.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrInvalidTransition),
		errors.Is(err, trip.ErrImmutableState),
		errors.Is(err, trip.ErrResourceUnavailable),
		errors.Is(err, trip.ErrAlreadyRated),
		errors.Is(err, fleet.ErrInvalidState),
		errors.Is(err, maintenance.ErrInvalidState),
		errors.Is(err, waypoint.ErrTripClosed),
		errors.Is(err, waypoint.ErrWaypointConflict),
		errors.Is(err, waypoint.ErrAlreadyArrived),
		errors.Is(err, waypoint.ErrNotYetArrived),
		errors.Is(err, waypoint.ErrAlreadyDeparted):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, trip.ErrLicenseIncompatible),
		errors.Is(err, trip.ErrLicenseExpiringSoon),
		errors.Is(err, trip.ErrCapacityExceeded):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
