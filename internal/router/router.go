package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/childcare-booking/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers the health check on the provided Echo
// instance. This endpoint can be used by load balancers or monitoring
// systems to verify that the service is up and running.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterReservations registers the public reservation endpoints.
// Both routes are guest-facing: guardians book and look up
// reservations without an account, identified only by the reference
// number the booking returns. The optional rate-limit middleware is
// applied to the whole group to shield the write path from abuse.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/reservations")
	if limit != nil {
		g.Use(limit)
	}
	// Create a reservation from a booking draft.
	g.POST("", r.Create)
	// Look up a reservation by its reference number.
	g.GET("/:referenceNumber", r.Show)
}
