package models

import (
	"sort"
	"time"
)

// BookingRequest is a customer-initiated request to reserve a performer
// for an event date. PublicID is the opaque identifier exposed to clients;
// ID stays internal to the storage layer.
type BookingRequest struct {
	ID            int64     `json:"-"`
	PublicID      string    `json:"id"`
	PerformerID   int64     `json:"performer_id"`
	PerformerName string    `json:"performer_name"`
	CustomerID    int64     `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	Date          time.Time `json:"date"`
	Details       string    `json:"details,omitempty"`
	Service       string    `json:"service,omitempty"`
	Price         int64     `json:"price,omitempty"`
	Status        string    `json:"status"` // pending, confirmed, rejected, cancelled_by_customer
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

// IsTerminal reports whether the request reached a final state.
func (b *BookingRequest) IsTerminal() bool {
	return IsTerminalBookingStatus(b.Status)
}

// SortBookingsForDisplay orders requests the way performer dashboards show
// them: pending first, then by event date descending. Display concern only,
// storage order is not guaranteed.
func SortBookingsForDisplay(bookings []*BookingRequest) {
	sort.SliceStable(bookings, func(i, j int) bool {
		iPending := bookings[i].Status == BookingStatusPending
		jPending := bookings[j].Status == BookingStatusPending
		if iPending != jPending {
			return iPending
		}
		return bookings[i].Date.After(bookings[j].Date)
	})
}
