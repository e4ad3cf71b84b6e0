// README: Handler request-validation tests. Malformed requests must be rejected
// before any service call, so the handlers run with nil services here.
package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"convoy/internal/http/handlers"
)

func buildValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	trips := handlers.NewTripHandler(nil, nil)
	waypoints := handlers.NewWaypointHandler(nil)
	telemetry := handlers.NewTelemetryHandler(nil)

	r.POST("/api/trips", trips.Create)
	r.POST("/api/trips/:id/cancel", trips.Cancel)
	r.POST("/api/trips/:id/rating", trips.Rate)
	r.POST("/api/trips/:id/complete", trips.Complete)
	r.POST("/api/trips/:id/waypoints", waypoints.Add)
	r.POST("/api/trips/:id/waypoints/:seq/arrive", waypoints.MarkArrived)
	r.GET("/api/vehicles/nearby", telemetry.Nearby)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTripMalformedBody(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodPost, "/api/trips", `{"vehicle_id": 123`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTripMissingRequiredFields(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodPost, "/api/trips", `{"origin": "A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelWithoutReason(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodPost, "/api/trips/t1/cancel", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateWithoutRating(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodPost, "/api/trips/t1/rating", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteWithoutDistance(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodPost, "/api/trips/t1/complete", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddWaypointWithoutSeq(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodPost, "/api/trips/t1/waypoints", `{"label": "dock"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArriveNonNumericSeq(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodPost, "/api/trips/t1/waypoints/abc/arrive", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNearbyMissingCoordinates(t *testing.T) {
	r := buildValidationRouter()
	w := doJSON(r, http.MethodGet, "/api/vehicles/nearby?radius_km=5", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
