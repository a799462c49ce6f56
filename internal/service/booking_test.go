package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iliyamo/childcare-booking/internal/model"
	"github.com/iliyamo/childcare-booking/internal/repository"
	"github.com/iliyamo/childcare-booking/internal/validation"
)

// mockCustomerStore is a test double for the customer repository.
type mockCustomerStore struct {
	customer model.Customer
	err      error
	calls    int
}

func (m *mockCustomerStore) FirstOrCreateTx(ctx context.Context, tx *sql.Tx, name, phone string) (model.Customer, error) {
	m.calls++
	if m.err != nil {
		return model.Customer{}, m.err
	}
	return m.customer, nil
}

// mockReservationStore is a test double for the reservation
// repository. It reports a duplicate reference for the first
// duplicates inserts, then succeeds.
type mockReservationStore struct {
	duplicates int
	err        error
	attempts   []string
	created    *model.Reservation
	detail     *repository.ReservationDetail
	detailErr  error
}

func (m *mockReservationStore) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	m.attempts = append(m.attempts, res.ReferenceNumber)
	if m.err != nil {
		return m.err
	}
	if m.duplicates > 0 {
		m.duplicates--
		return repository.ErrDuplicateReference
	}
	res.ID = 42
	res.CreatedAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m.created = res
	return nil
}

func (m *mockReservationStore) GetByReference(ctx context.Context, referenceNumber string) (*repository.ReservationDetail, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.detail, nil
}

func testBooking() *validation.Booking {
	return &validation.Booking{
		CustomerName:  "Alice",
		CustomerPhone: "555-1000",
		Address:       "12 Elm St",
		StartAt:       time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC),
		Children:      []model.Child{{Name: "Bo", DateOfBirth: "2017-03-10"}},
	}
}

// newTestService builds a BookingService without a database handle;
// provisionTx never touches it.
func newTestService(customers *mockCustomerStore, reservations *mockReservationStore) *BookingService {
	return NewBookingService(nil, customers, reservations)
}

func TestProvisionTxSuccess(t *testing.T) {
	customers := &mockCustomerStore{customer: model.Customer{ID: 7, Name: "Alice", Phone: "555-1000"}}
	reservations := &mockReservationStore{}
	s := newTestService(customers, reservations)

	res, err := s.provisionTx(context.Background(), nil, testBooking())
	if err != nil {
		t.Fatalf("provisionTx() error = %v", err)
	}
	if res.CustomerID != 7 {
		t.Errorf("res.CustomerID = %d, want 7", res.CustomerID)
	}
	if res.ID != 42 {
		t.Errorf("res.ID = %d, want 42", res.ID)
	}
	if res.ReferenceNumber == "" {
		t.Error("res.ReferenceNumber is empty")
	}
	if customers.calls != 1 {
		t.Errorf("customer resolutions = %d, want 1", customers.calls)
	}
	if len(reservations.attempts) != 1 {
		t.Errorf("insert attempts = %d, want 1", len(reservations.attempts))
	}
}

func TestProvisionTxRetriesOnDuplicateReference(t *testing.T) {
	customers := &mockCustomerStore{customer: model.Customer{ID: 7}}
	reservations := &mockReservationStore{duplicates: 2}
	s := newTestService(customers, reservations)

	seq := 0
	s.generate = func() (string, error) {
		seq++
		return fmt.Sprintf("REF_%06d", seq), nil
	}

	res, err := s.provisionTx(context.Background(), nil, testBooking())
	if err != nil {
		t.Fatalf("provisionTx() error = %v", err)
	}
	if len(reservations.attempts) != 3 {
		t.Fatalf("insert attempts = %d, want 3", len(reservations.attempts))
	}
	// Each retry must carry a freshly generated reference.
	if reservations.attempts[0] == reservations.attempts[1] || reservations.attempts[1] == reservations.attempts[2] {
		t.Errorf("retries reused a reference: %v", reservations.attempts)
	}
	if res.ReferenceNumber != reservations.attempts[2] {
		t.Errorf("res.ReferenceNumber = %q, want %q", res.ReferenceNumber, reservations.attempts[2])
	}
	if customers.calls != 1 {
		t.Errorf("customer resolutions = %d, want 1 (resolution must not repeat per retry)", customers.calls)
	}
}

func TestProvisionTxExhaustsRetryCeiling(t *testing.T) {
	customers := &mockCustomerStore{customer: model.Customer{ID: 7}}
	reservations := &mockReservationStore{duplicates: maxReferenceAttempts + 1}
	s := newTestService(customers, reservations)

	_, err := s.provisionTx(context.Background(), nil, testBooking())
	if !errors.Is(err, ErrReferenceExhausted) {
		t.Fatalf("provisionTx() error = %v, want ErrReferenceExhausted", err)
	}
	if len(reservations.attempts) != maxReferenceAttempts {
		t.Errorf("insert attempts = %d, want %d", len(reservations.attempts), maxReferenceAttempts)
	}
}

func TestProvisionTxStopsOnStoreError(t *testing.T) {
	storeErr := errors.New("connection lost")
	customers := &mockCustomerStore{customer: model.Customer{ID: 7}}
	reservations := &mockReservationStore{err: storeErr}
	s := newTestService(customers, reservations)

	_, err := s.provisionTx(context.Background(), nil, testBooking())
	if !errors.Is(err, storeErr) {
		t.Fatalf("provisionTx() error = %v, want wrapped %v", err, storeErr)
	}
	if errors.Is(err, ErrReferenceExhausted) {
		t.Error("transient store error misclassified as reference exhaustion")
	}
	// A non-duplicate failure must not trigger regeneration.
	if len(reservations.attempts) != 1 {
		t.Errorf("insert attempts = %d, want 1", len(reservations.attempts))
	}
}

func TestProvisionTxCustomerErrorStopsBeforeInsert(t *testing.T) {
	resolveErr := errors.New("deadlock")
	customers := &mockCustomerStore{err: resolveErr}
	reservations := &mockReservationStore{}
	s := newTestService(customers, reservations)

	_, err := s.provisionTx(context.Background(), nil, testBooking())
	if !errors.Is(err, resolveErr) {
		t.Fatalf("provisionTx() error = %v, want wrapped %v", err, resolveErr)
	}
	if len(reservations.attempts) != 0 {
		t.Errorf("insert attempts = %d, want 0", len(reservations.attempts))
	}
}

func TestFindByReference(t *testing.T) {
	detail := &repository.ReservationDetail{ReferenceNumber: "REF_abc123", CustomerName: "Alice"}
	reservations := &mockReservationStore{detail: detail}
	s := newTestService(&mockCustomerStore{}, reservations)

	got, err := s.FindByReference(context.Background(), "REF_abc123")
	if err != nil {
		t.Fatalf("FindByReference() error = %v", err)
	}
	if got != detail {
		t.Errorf("FindByReference() = %v, want %v", got, detail)
	}
}

func TestFindByReferenceNotFound(t *testing.T) {
	reservations := &mockReservationStore{detailErr: repository.ErrReservationNotFound}
	s := newTestService(&mockCustomerStore{}, reservations)

	_, err := s.FindByReference(context.Background(), "REF_unknown")
	if !errors.Is(err, repository.ErrReservationNotFound) {
		t.Fatalf("FindByReference() error = %v, want ErrReservationNotFound", err)
	}
}
