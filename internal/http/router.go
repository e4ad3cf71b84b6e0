// README: Route table. Health is open; everything under /api requires a bearer
// token.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"convoy/internal/http/handlers"
	"convoy/internal/http/middleware"
)

type RouterConfig struct {
	Logger    *logrus.Logger
	JWTSecret string
	Pool      *pgxpool.Pool

	Trips       *handlers.TripHandler
	Fleet       *handlers.FleetHandler
	Waypoints   *handlers.WaypointHandler
	Maintenance *handlers.MaintenanceHandler
	Ledger      *handlers.LedgerHandler
	Telemetry   *handlers.TelemetryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(cfg.Logger), middleware.Recovery(cfg.Logger))

	r.GET("/health", func(c *gin.Context) {
		if cfg.Pool != nil {
			if err := cfg.Pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.Auth(cfg.JWTSecret))

	trips := api.Group("/trips")
	{
		trips.POST("", cfg.Trips.Create)
		trips.GET("", cfg.Trips.List)
		trips.GET("/:id", cfg.Trips.Get)
		trips.PATCH("/:id", cfg.Trips.Update)
		trips.POST("/:id/dispatch", cfg.Trips.Dispatch)
		trips.POST("/:id/complete", cfg.Trips.Complete)
		trips.POST("/:id/cancel", cfg.Trips.Cancel)
		trips.POST("/:id/rating", cfg.Trips.Rate)
		trips.GET("/:id/ledger", cfg.Trips.Ledger)

		trips.POST("/:id/waypoints", cfg.Waypoints.Add)
		trips.GET("/:id/waypoints", cfg.Waypoints.List)
		trips.POST("/:id/waypoints/:seq/arrive", cfg.Waypoints.MarkArrived)
		trips.POST("/:id/waypoints/:seq/depart", cfg.Waypoints.MarkDeparted)
	}

	vehicles := api.Group("/vehicles")
	{
		vehicles.POST("", cfg.Fleet.CreateVehicle)
		vehicles.GET("", cfg.Fleet.ListVehicles)
		vehicles.GET("/nearby", cfg.Telemetry.Nearby)
		vehicles.GET("/:id", cfg.Fleet.GetVehicle)
		vehicles.DELETE("/:id", cfg.Fleet.DeleteVehicle)
		vehicles.POST("/:id/retire", cfg.Fleet.RetireVehicle)

		vehicles.POST("/:id/maintenance", cfg.Maintenance.Open)
		vehicles.GET("/:id/maintenance", cfg.Maintenance.ListByVehicle)

		vehicles.POST("/:id/fuel", cfg.Ledger.AddFuelLog)
		vehicles.GET("/:id/fuel", cfg.Ledger.ListFuelLogs)
		vehicles.POST("/:id/expenses", cfg.Ledger.AddExpense)
		vehicles.GET("/:id/expenses", cfg.Ledger.ListExpenses)
		vehicles.GET("/:id/summary", cfg.Ledger.VehicleSummary)

		vehicles.POST("/:id/telemetry", cfg.Telemetry.Ingest)
		vehicles.GET("/:id/telemetry", cfg.Telemetry.History)
	}

	maintenance := api.Group("/maintenance")
	{
		maintenance.GET("/:id", cfg.Maintenance.Get)
		maintenance.POST("/:id/close", cfg.Maintenance.Close)
	}

	drivers := api.Group("/drivers")
	{
		drivers.POST("", cfg.Fleet.CreateDriver)
		drivers.GET("", cfg.Fleet.ListDrivers)
		drivers.GET("/:id", cfg.Fleet.GetDriver)
		drivers.DELETE("/:id", cfg.Fleet.DeleteDriver)
		drivers.POST("/:id/duty", cfg.Fleet.SetDriverDuty)
		drivers.POST("/:id/suspend", cfg.Fleet.SuspendDriver)
		drivers.POST("/:id/reinstate", cfg.Fleet.ReinstateDriver)
		drivers.PUT("/:id/license", cfg.Fleet.UpdateDriverLicense)
		drivers.POST("/:id/safety/recalculate", cfg.Fleet.RecalculateSafety)
	}

	api.GET("/audit/:entity_type/:id", cfg.Fleet.AuditTrail)

	return r
}
