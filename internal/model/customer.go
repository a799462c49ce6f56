package model

import "time"

// Customer represents a guardian record as stored in the `customers`
// table. A customer is identified by their phone number: the column
// carries a unique index and at most one row ever exists per phone
// value. Rows are created on the first booking from a new phone and
// are never updated afterwards by the booking flow; in particular a
// later booking from the same phone does not overwrite the name.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – guardian's name as given on their first booking.
//  Phone     – unique phone number (natural key).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Customer struct {
	ID        uint64    // customers.id
	Name      string    // customers.name
	Phone     string    // customers.phone (unique)
	CreatedAt time.Time // customers.created_at
	UpdatedAt time.Time // customers.updated_at
}
