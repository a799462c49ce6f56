package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/iliyamo/childcare-booking/internal/model"
	"github.com/iliyamo/childcare-booking/internal/queue"
	"github.com/iliyamo/childcare-booking/internal/repository"
	"github.com/iliyamo/childcare-booking/internal/service"
	"github.com/iliyamo/childcare-booking/internal/utils"
	"github.com/iliyamo/childcare-booking/internal/validation"
	"github.com/labstack/echo/v4"
)

// Bookings is the slice of the booking service the handler depends on.
type Bookings interface {
	Provision(ctx context.Context, b *validation.Booking) (*model.Reservation, error)
	FindByReference(ctx context.Context, referenceNumber string) (*repository.ReservationDetail, error)
}

// ReservationHandler serves the public reservation endpoints. It binds
// and validates incoming drafts against the injected clock, hands
// accepted drafts to the booking service and maps service errors onto
// HTTP status codes. No authentication applies: both endpoints are
// guest-facing.
type ReservationHandler struct {
	Bookings Bookings
	Now      func() time.Time // injected clock so validation is testable against fixed instants
}

// NewReservationHandler constructs a ReservationHandler. A nil clock
// defaults to time.Now.
func NewReservationHandler(bookings Bookings, now func() time.Time) *ReservationHandler {
	if bookings == nil {
		panic("nil booking service passed to NewReservationHandler")
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationHandler{Bookings: bookings, Now: now}
}

// Create handles POST /v1/reservations. The request body must contain
// a JSON booking draft. Validation failures return 422 with a map of
// field paths to messages; nothing is written in that case. On success
// the reservation is provisioned atomically and returned with its
// assigned reference number, and a reservation.created event is
// published best-effort.
func (h *ReservationHandler) Create(c echo.Context) error {
	var draft validation.Draft
	if err := c.Bind(&draft); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	booking, errs := validation.ValidateDraft(draft, h.Now().UTC())
	if len(errs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "validation failed",
			"errors":  errs,
		})
	}

	ctx := c.Request().Context()
	res, err := h.Bookings.Provision(ctx, booking)
	if err != nil {
		// Provisioning failures are service faults, never client input
		// errors: validation already passed, and atomicity guarantees
		// nothing was written, so the whole submission is safe to
		// retry. 503 signals exactly that.
		if errors.Is(err, service.ErrReferenceExhausted) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not allocate a reference number"})
		}
		c.Logger().Errorf("provision booking: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}

	// Publish failures are logged inside the publisher and never fail
	// the booking the event describes.
	_ = queue.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{
		ReservationID:   res.ID,
		ReferenceNumber: res.ReferenceNumber,
		CustomerID:      res.CustomerID,
		CustomerName:    booking.CustomerName,
		CustomerPhone:   booking.CustomerPhone,
		Address:         res.Address,
		StartAt:         res.StartAt.UTC().Format(time.RFC3339),
		ChildCount:      len(res.Children),
		CreatedAt:       res.CreatedAt.UTC().Format(time.RFC3339),
	})

	body := echo.Map{
		"id":               res.ID,
		"reference_number": res.ReferenceNumber,
		"customer_id":      res.CustomerID,
		"address":          res.Address,
		"start_at":         res.StartAt.UTC().Format(time.RFC3339),
		"children":         res.Children,
		"created_at":       res.CreatedAt.UTC().Format(time.RFC3339),
	}
	if res.EndAt != nil {
		body["end_at"] = res.EndAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusCreated, body)
}

// childResource is one roster entry in the read-back response. Age is
// a display-only convenience string ("8 years old", "5 months old")
// and plays no part in validation.
type childResource struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	Age         string `json:"age"`
}

// Show handles GET /v1/reservations/:referenceNumber. It returns the
// reservation carrying the reference number together with its
// customer, or 404 when the reference is unknown.
func (h *ReservationHandler) Show(c echo.Context) error {
	referenceNumber := c.Param("referenceNumber")
	if referenceNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference number is required"})
	}

	det, err := h.Bookings.FindByReference(c.Request().Context(), referenceNumber)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		c.Logger().Errorf("find booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	now := h.Now().UTC()
	children := make([]childResource, 0, len(det.Children))
	for _, child := range det.Children {
		children = append(children, childResource{
			Name:        child.Name,
			DateOfBirth: child.DateOfBirth,
			Age:         utils.AgeInWords(child.DateOfBirth, now),
		})
	}

	body := echo.Map{
		"reference_number": det.ReferenceNumber,
		"customer_name":    det.CustomerName,
		"customer_phone":   det.CustomerPhone,
		"address":          det.Address,
		"start_at":         det.StartAt.UTC().Format(time.RFC3339),
		"children":         children,
	}
	if det.EndAt != nil {
		body["end_at"] = det.EndAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, body)
}
