package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalBookingStatus(t *testing.T) {
	assert.False(t, IsTerminalBookingStatus(BookingStatusPending))
	assert.True(t, IsTerminalBookingStatus(BookingStatusConfirmed))
	assert.True(t, IsTerminalBookingStatus(BookingStatusRejected))
	assert.True(t, IsTerminalBookingStatus(BookingStatusCancelledByCustomer))
	assert.False(t, IsTerminalBookingStatus("unknown"))
}

func TestSortBookingsForDisplay(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2026, 9, n, 0, 0, 0, 0, time.UTC)
	}
	bookings := []*BookingRequest{
		{PublicID: "confirmed-late", Status: BookingStatusConfirmed, Date: day(20)},
		{PublicID: "pending-early", Status: BookingStatusPending, Date: day(5)},
		{PublicID: "rejected", Status: BookingStatusRejected, Date: day(25)},
		{PublicID: "pending-late", Status: BookingStatusPending, Date: day(15)},
	}

	SortBookingsForDisplay(bookings)

	// Ожидающие впереди, внутри группы по дате по убыванию
	got := make([]string, 0, len(bookings))
	for _, b := range bookings {
		got = append(got, b.PublicID)
	}
	assert.Equal(t, []string{"pending-late", "pending-early", "rejected", "confirmed-late"}, got)
}
