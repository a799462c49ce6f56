package model

import "time"

// Child is one entry of a reservation's children roster. The roster is
// stored verbatim as a JSON array column on the reservations table, so
// the json tags here define the storage encoding as well as the API
// encoding. DateOfBirth is kept as the submitted YYYY-MM-DD string and
// round-trips unchanged between write and read-back.
//
// Fields:
//  Name        – child's name.
//  DateOfBirth – calendar date of birth (YYYY-MM-DD).
type Child struct {
	Name        string `json:"name"`          // children[i].name
	DateOfBirth string `json:"date_of_birth"` // children[i].date_of_birth
}

// Reservation records a booking at the facility. Each reservation
// belongs to exactly one customer and carries a globally unique
// reference number that is handed to the guardian for later lookup.
// Rows are created exactly once, atomically with customer resolution,
// and are never mutated afterwards.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerID      – customer who made the booking.
//  ReferenceNumber – unique external token (e.g. REF_x7Kp2Q).
//  Address         – address the booking is for.
//  StartAt         – when the booking begins.
//  EndAt           – optional end time; carried as metadata only.
//  Children        – roster of 1 to 4 children.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – timestamp of last update.
type Reservation struct {
	ID              uint64     // reservations.id
	CustomerID      uint64     // reservations.customer_id
	ReferenceNumber string     // reservations.reference_number (unique)
	Address         string     // reservations.address
	StartAt         time.Time  // reservations.start_at
	EndAt           *time.Time // reservations.end_at (nullable)
	Children        []Child    // reservations.children (JSON column)
	CreatedAt       time.Time  // reservations.created_at
	UpdatedAt       time.Time  // reservations.updated_at
}
