package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/childcare-booking/internal/model"
)

// ReservationRepo provides data access to the reservations table.
// Reservations link a customer to a booked time slot and carry the
// children roster as a JSON column. The reference_number column has a
// unique index; violations are surfaced as ErrDuplicateReference so
// the provisioning layer can regenerate and retry. All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a new reservation within the scope of an existing
// transaction. It populates the generated ID and the database-assigned
// timestamps on the provided record. A unique-index violation on
// reference_number yields ErrDuplicateReference; any other database
// error is returned as-is. The caller must commit or rollback the
// transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	children, err := json.Marshal(res.Children)
	if err != nil {
		return err
	}
	var endAt interface{}
	if res.EndAt != nil {
		endAt = res.EndAt.UTC()
	}
	const q = `INSERT INTO reservations (customer_id, reference_number, address, start_at, end_at, children) VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.CustomerID, res.ReferenceNumber, res.Address, res.StartAt.UTC(), endAt, children)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// ReservationDetail encapsulates a reservation along with its linked
// customer. It is returned by GetByReference for read-back and
// display.
type ReservationDetail struct {
	ID              uint64        `json:"id"`
	ReferenceNumber string        `json:"reference_number"`
	CustomerID      uint64        `json:"customer_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	Address         string        `json:"address"`
	StartAt         time.Time     `json:"start_at"`
	EndAt           *time.Time    `json:"end_at,omitempty"`
	Children        []model.Child `json:"children"`
	CreatedAt       time.Time     `json:"created_at"`
}

// GetByReference returns the reservation carrying the given reference
// number together with its customer. When no such reservation exists,
// ErrReservationNotFound is returned.
func (r *ReservationRepo) GetByReference(ctx context.Context, referenceNumber string) (*ReservationDetail, error) {
	const q = `SELECT r.id, r.reference_number, r.customer_id, c.name, c.phone,
	                  r.address, r.start_at, r.end_at, r.children, r.created_at
	           FROM reservations r
	           JOIN customers c ON c.id = r.customer_id
	           WHERE r.reference_number = ?`
	var det ReservationDetail
	var endAt sql.NullTime
	var children []byte
	err := r.db.QueryRowContext(ctx, q, referenceNumber).Scan(
		&det.ID, &det.ReferenceNumber, &det.CustomerID, &det.CustomerName, &det.CustomerPhone,
		&det.Address, &det.StartAt, &endAt, &children, &det.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if endAt.Valid {
		t := endAt.Time.UTC()
		det.EndAt = &t
	}
	det.StartAt = det.StartAt.UTC()
	if err := json.Unmarshal(children, &det.Children); err != nil {
		return nil, err
	}
	return &det, nil
}
