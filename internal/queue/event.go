// Package queue defines message payloads exchanged over the message
// broker, the publisher used by the booking flow and the background
// consumer that records published events.
package queue

// ReservationCreatedEvent is published when a booking has been
// successfully provisioned. It contains enough information for
// downstream consumers to log or trigger analytics without querying
// the primary database.
type ReservationCreatedEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	ReferenceNumber string `json:"reference_number"`
	CustomerID      uint64 `json:"customer_id"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	Address         string `json:"address"`
	StartAt         string `json:"start_at"`
	ChildCount      int    `json:"child_count"`
	CreatedAt       string `json:"created_at"`
}
