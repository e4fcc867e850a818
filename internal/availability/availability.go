package availability

import (
	"sort"
	"time"

	models "github.com/adriaticstays/booking-api/internal"
)

const day = 24 * time.Hour

// BlockedDates is the set of calendar days unavailable for one listing,
// keyed by UTC midnight. Time-of-day on the source bookings is ignored.
type BlockedDates struct {
	days map[time.Time]struct{}
}

// Normalize truncates t to its UTC calendar day.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildBlockedDates unions the occupied days of every booking: check-in day
// inclusive up to, but not including, the check-out day. Overlapping bookings
// collapse into a single entry per day.
func BuildBlockedDates(bookings []models.ExistingBooking) BlockedDates {
	days := make(map[time.Time]struct{})
	for _, b := range bookings {
		start := Normalize(b.CheckIn)
		end := Normalize(b.CheckOut)
		for d := start; d.Before(end); d = d.Add(day) {
			days[d] = struct{}{}
		}
	}
	return BlockedDates{days: days}
}

// Blocked reports whether t's calendar day is occupied.
func (b BlockedDates) Blocked(t time.Time) bool {
	_, ok := b.days[Normalize(t)]
	return ok
}

// RangeFree reports whether no day in [start, end] inclusive is occupied.
// A single-day range behaves exactly like Blocked on that day.
func (b BlockedDates) RangeFree(start, end time.Time) bool {
	first := Normalize(start)
	last := Normalize(end)
	for d := first; !d.After(last); d = d.Add(day) {
		if _, ok := b.days[d]; ok {
			return false
		}
	}
	return true
}

// Len returns the number of distinct blocked days.
func (b BlockedDates) Len() int {
	return len(b.days)
}

// Days returns the blocked days in ascending order.
func (b BlockedDates) Days() []time.Time {
	out := make([]time.Time, 0, len(b.days))
	for d := range b.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Nights counts the nights of a stay from check-in to check-out.
func Nights(checkIn, checkOut time.Time) int {
	n := int(Normalize(checkOut).Sub(Normalize(checkIn)) / day)
	if n < 0 {
		return 0
	}
	return n
}
