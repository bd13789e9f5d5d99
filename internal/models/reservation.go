package models

import (
	"fmt"
	"time"
)

const (
	// MinGuests and MaxGuests bound the party size of a reservation
	MinGuests = 1
	MaxGuests = 20
)

// ReservationStatus represents the possible states of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation represents a table booking
type Reservation struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	Guests          int               `json:"guests"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ReservationSlots returns the bookable time slots, 5:00 PM to 9:30 PM every half hour
func ReservationSlots() []string {
	start := time.Date(2000, 1, 1, 17, 0, 0, 0, time.UTC)
	end := time.Date(2000, 1, 1, 21, 30, 0, 0, time.UTC)

	var slots []string
	for t := start; !t.After(end); t = t.Add(30 * time.Minute) {
		slots = append(slots, t.Format("3:04 PM"))
	}
	return slots
}

// IsReservationSlot reports whether slot is one of the bookable time slots
func IsReservationSlot(slot string) bool {
	for _, s := range ReservationSlots() {
		if s == slot {
			return true
		}
	}
	return false
}

// ValidateReservation checks the date format and the time slot of a reservation.
// Contact details and party size are checked where the request is bound.
func ValidateReservation(r *Reservation) error {
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("reservation date must be YYYY-MM-DD: %w", err)
	}
	if !IsReservationSlot(r.Time) {
		return fmt.Errorf("reservation time %q is not an available slot", r.Time)
	}
	return nil
}
