package model

import "time"

// ReservationStatus is fixed to confirmed for bookings made through the
// reservation flow; the other values exist for records created elsewhere.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation records a confirmed table booking in a dining area.
//
// Fields:
//
//	ID              – generated identifier (snowflake).
//	Number          – display number shown to the guest, e.g. RES-482913.
//	ClientID        – id of the signed-in client, nil for anonymous bookings.
//	EnvironmentID   – catalog id of the dining area.
//	EnvironmentName – display name of the dining area at booking time.
//	Date            – booking date, YYYY-MM-DD.
//	StartTime       – slot start, HH:MM.
//	EndTime         – StartTime plus the default duration, HH:MM.
//	ReservationDate – Date and StartTime combined.
//	PartySize       – number of guests, within the area's bounds.
//	Status          – always confirmed in this flow.
//	Notes           – free-text special requests.
//	Occasion        – optional occasion (birthday, anniversary, ...).
//	IsPaid          – payment flag, always false.
//	CreatedAt       – creation timestamp.
type Reservation struct {
	ID              int64             `json:"id"`
	Number          string            `json:"reservationNumber"`
	ClientID        *int              `json:"clienteID"`
	EnvironmentID   string            `json:"ambienteID"`
	EnvironmentName string            `json:"ambiente"`
	Date            string            `json:"date"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	ReservationDate time.Time         `json:"reservationDate"`
	PartySize       int               `json:"numberOfPeople"`
	Status          ReservationStatus `json:"status"`
	Notes           string            `json:"specialNotes"`
	Occasion        string            `json:"ocasion"`
	IsPaid          bool              `json:"isPaid"`
	CreatedAt       time.Time         `json:"createdAt"`
}
