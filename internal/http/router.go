// README: HTTP route registration; delegates to module services.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"roam/internal/http/handlers"
	"roam/internal/http/middleware"
	"roam/internal/modules/advisor"
	"roam/internal/modules/ledger"
	"roam/internal/modules/location"
	"roam/internal/modules/reservation"
	"roam/internal/modules/vehicle"
	"roam/internal/payments"
	"roam/internal/ws"
)

type Deps struct {
	Reservations *reservation.Service
	Vehicles     *vehicle.Service
	Locations    *location.Service
	Ledger       *ledger.Ledger
	Advisor      *advisor.Advisor
	Deposits     *payments.StripeClient
	Hub          *ws.Hub

	JWTSecret           string
	StripeWebhookSecret string
	Logger              *zap.SugaredLogger
}

func NewRouter(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	paymentsHandler := handlers.NewPaymentsHandler(deps.Reservations, deps.Deposits, deps.StripeWebhookSecret, log)
	r.POST("/api/payments/webhook", paymentsHandler.Webhook)

	api := r.Group("/api", middleware.Auth(deps.JWTSecret))

	reservationHandler := handlers.NewReservationHandler(deps.Reservations, deps.Deposits, log)
	api.POST("/reservations", reservationHandler.Create)
	api.GET("/reservations", reservationHandler.List)
	api.GET("/reservations/:id", reservationHandler.Get)
	api.POST("/reservations/:id/confirm", reservationHandler.Confirm)
	api.POST("/reservations/:id/cancel", reservationHandler.Cancel)

	vehicleHandler := handlers.NewVehicleHandler(deps.Vehicles, deps.Ledger)
	api.POST("/vehicles", vehicleHandler.Register)
	api.GET("/vehicles", vehicleHandler.ListMine)
	api.GET("/vehicles/:id", vehicleHandler.Get)
	api.PATCH("/vehicles/:id", vehicleHandler.Update)
	api.GET("/vehicles/:id/availability", vehicleHandler.Availability)

	locationHandler := handlers.NewLocationHandler(deps.Locations, deps.Hub)
	api.PUT("/vehicles/:id/location", locationHandler.Record)
	api.GET("/vehicles/:id/location", locationHandler.Latest)
	api.GET("/vehicles/:id/location/history", locationHandler.History)
	api.GET("/vehicles/:id/location/stream", locationHandler.Stream)

	advisorHandler := handlers.NewAdvisorHandler(deps.Advisor, deps.Vehicles)
	api.GET("/vehicles/:id/suggested-rate", advisorHandler.SuggestRate)

	return r
}
