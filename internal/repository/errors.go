// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as the provisioner and handlers to distinguish between failure
// scenarios. ErrDuplicateReference in particular is what the
// provisioner's retry loop keys on: it must be surfaced distinctly
// from other write failures so that only genuine reference-number
// collisions trigger regeneration.
package repository

import (
	"errors"
	"strings"
)

// ErrReservationNotFound is returned when no reservation carries the
// requested reference number. Handlers should translate this into an
// HTTP 404 response; it is a normal negative result, not a fault.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrDuplicateReference is returned when inserting a reservation
// violates the unique index on reference_number. The provisioner
// reacts by generating a fresh reference and retrying.
var ErrDuplicateReference = errors.New("reference number already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-key error
// (error number 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
