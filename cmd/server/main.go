package main // Entry point package

import (
	"log"  // Logging library
	"time" // Wall clock injected into the handler

	"github.com/iliyamo/childcare-booking/internal/config"     // Internal config loader
	"github.com/iliyamo/childcare-booking/internal/database"   // MySQL connection
	"github.com/iliyamo/childcare-booking/internal/handler"    // HTTP handlers
	"github.com/iliyamo/childcare-booking/internal/middleware" // Rate limiting
	"github.com/iliyamo/childcare-booking/internal/queue"      // Reservation event consumer
	"github.com/iliyamo/childcare-booking/internal/repository" // Data access
	"github.com/iliyamo/childcare-booking/internal/router"     // Route registration
	"github.com/iliyamo/childcare-booking/internal/service"    // Booking provisioning
	"github.com/labstack/echo/v4"                              // Echo web framework
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: a nil client disables rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting disabled")
	}

	customers := repository.NewCustomerRepo(db)
	reservations := repository.NewReservationRepo(db)
	bookings := service.NewBookingService(db, customers, reservations)
	h := handler.NewReservationHandler(bookings, time.Now)

	// Background consumer records reservation.created events; it runs
	// its own reconnect loop and never stops the server.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation-consumer: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterReservations(e, h, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
