package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/childcare-booking/internal/model"
)

// CustomerRepo provides data access to the customers table. Customers
// are keyed by phone number: the table carries a unique index on the
// phone column and that index, not application-level locking, is what
// keeps concurrent bookings from the same new phone down to a single
// row.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// FirstOrCreateTx resolves a customer by phone within the scope of an
// existing transaction, creating one with the given name if absent.
// The initial lookup is a plain non-locking read: a locking read on a
// missing row would take a gap lock on the phone index, and two
// transactions racing on the same new phone hold compatible gap locks
// that deadlock both inserts. Uniqueness comes from the unique index
// itself; the loser of the insert race gets a duplicate-key error and
// re-reads with FOR UPDATE, which is the only point a locking read is
// needed. An existing customer's name is never overwritten. The caller
// must commit or rollback the transaction.
func (r *CustomerRepo) FirstOrCreateTx(ctx context.Context, tx *sql.Tx, name, phone string) (model.Customer, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	c, err := getByPhoneTx(ctx, tx, phone)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO customers (name, phone) VALUES (?,?)",
		name, phone)
	if err != nil {
		if isDuplicateKey(err) {
			// A concurrent booking from the same phone won the insert.
			// The locking read sees the committed winner.
			return getByPhoneForUpdateTx(ctx, tx, phone)
		}
		return model.Customer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Customer{}, err
	}
	// Query back the full row to populate timestamps and defaults.
	c = model.Customer{}
	err = tx.QueryRowContext(ctx,
		"SELECT id, name, phone, created_at, updated_at FROM customers WHERE id = ?",
		id).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// getByPhoneTx fetches a customer by phone inside the transaction with
// a plain consistent read.
func getByPhoneTx(ctx context.Context, tx *sql.Tx, phone string) (model.Customer, error) {
	var c model.Customer
	err := tx.QueryRowContext(ctx,
		"SELECT id, name, phone, created_at, updated_at FROM customers WHERE phone = ? LIMIT 1",
		phone).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// getByPhoneForUpdateTx fetches a customer by phone with a locking
// read. FOR UPDATE makes the read see the latest committed version of
// the row instead of the transaction's snapshot, which matters after a
// duplicate-key conflict: the winning row was committed by a
// competitor after this transaction's snapshot was taken.
func getByPhoneForUpdateTx(ctx context.Context, tx *sql.Tx, phone string) (model.Customer, error) {
	var c model.Customer
	err := tx.QueryRowContext(ctx,
		"SELECT id, name, phone, created_at, updated_at FROM customers WHERE phone = ? LIMIT 1 FOR UPDATE",
		phone).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetByPhone fetches a customer by phone outside any transaction.
func (r *CustomerRepo) GetByPhone(ctx context.Context, phone string) (model.Customer, error) {
	var c model.Customer
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, phone, created_at, updated_at FROM customers WHERE phone = ? LIMIT 1",
		strings.TrimSpace(phone)).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
