// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedQueue is the durable queue confirmed bookings are
// published to.
const ReservationConfirmedQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published when a booking is confirmed. It
// carries enough information for downstream consumers to log or notify
// without reading the scope that made the booking.
type ReservationConfirmedEvent struct {
	ReservationID     int64  `json:"reservation_id"`
	ReservationNumber string `json:"reservation_number"`
	ClientID          *int   `json:"client_id,omitempty"`
	EnvironmentID     string `json:"environment_id"`
	EnvironmentName   string `json:"environment_name"`
	Date              string `json:"date"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	PartySize         int    `json:"party_size"`
	Occasion          string `json:"occasion,omitempty"`
	ConfirmedAt       string `json:"confirmed_at"`
}
