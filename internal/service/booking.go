// Package service orchestrates booking provisioning: resolving the
// customer, assigning a reference number and persisting the
// reservation as one atomic unit.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/childcare-booking/internal/model"
	"github.com/iliyamo/childcare-booking/internal/reference"
	"github.com/iliyamo/childcare-booking/internal/repository"
	"github.com/iliyamo/childcare-booking/internal/validation"
)

// maxReferenceAttempts bounds how many reference numbers are tried
// before provisioning gives up with ErrReferenceExhausted.
const maxReferenceAttempts = 5

// ErrReferenceExhausted is returned when no free reference number was
// found within the retry ceiling. It is a service fault, not a client
// input error; handlers should translate it into an HTTP 503.
var ErrReferenceExhausted = errors.New("could not allocate a unique reference number")

// CustomerStore resolves customers by phone within a transaction,
// creating one when absent. Implemented by repository.CustomerRepo.
type CustomerStore interface {
	FirstOrCreateTx(ctx context.Context, tx *sql.Tx, name, phone string) (model.Customer, error)
}

// ReservationStore persists and reads back reservations. Implemented
// by repository.ReservationRepo.
type ReservationStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	GetByReference(ctx context.Context, referenceNumber string) (*repository.ReservationDetail, error)
}

// BookingService provisions validated bookings and looks up persisted
// ones. The write path runs in a single database transaction: either a
// fully persisted {customer, reservation} pair exists afterwards, or
// nothing does. The unique indexes on customers.phone and
// reservations.reference_number are the sole synchronization points;
// no in-process locking is involved.
type BookingService struct {
	db           *sql.DB
	customers    CustomerStore
	reservations ReservationStore
	generate     func() (string, error)
}

// NewBookingService constructs a BookingService over the given
// database handle and stores.
func NewBookingService(db *sql.DB, customers CustomerStore, reservations ReservationStore) *BookingService {
	if customers == nil || reservations == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{
		db:           db,
		customers:    customers,
		reservations: reservations,
		generate:     reference.Generate,
	}
}

// Provision persists a validated booking. It resolves the customer by
// phone (creating one if absent), assigns a fresh reference number and
// inserts the reservation, retrying generation on a reference
// collision up to the retry ceiling. On success the returned
// reservation carries its assigned ID and reference number. On failure
// nothing was written.
func (s *BookingService) Provision(ctx context.Context, b *validation.Booking) (*model.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.provisionTx(ctx, tx, b)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return res, nil
}

// provisionTx performs the provisioning steps within an existing
// transaction. A duplicate-reference insert leaves the transaction
// usable (MySQL rolls back only the failed statement), so the loop
// simply regenerates and re-inserts.
func (s *BookingService) provisionTx(ctx context.Context, tx *sql.Tx, b *validation.Booking) (*model.Reservation, error) {
	customer, err := s.customers.FirstOrCreateTx(ctx, tx, b.CustomerName, b.CustomerPhone)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	res := &model.Reservation{
		CustomerID: customer.ID,
		Address:    b.Address,
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		Children:   b.Children,
	}
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("generate reference: %w", err)
		}
		res.ReferenceNumber = ref
		err = s.reservations.CreateTx(ctx, tx, res)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, repository.ErrDuplicateReference) {
			return nil, fmt.Errorf("insert reservation: %w", err)
		}
	}
	return nil, ErrReferenceExhausted
}

// FindByReference returns the reservation carrying the given reference
// number together with its customer, or
// repository.ErrReservationNotFound when none exists.
func (s *BookingService) FindByReference(ctx context.Context, referenceNumber string) (*repository.ReservationDetail, error) {
	return s.reservations.GetByReference(ctx, referenceNumber)
}
