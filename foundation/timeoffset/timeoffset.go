// Package timeoffset provides a duration-from-midnight type shared by every
// parser and by the route/trip store. A TimeOffset is seconds since the
// midnight that begins a service day; trips that run past midnight carry
// values of 24h or more rather than wrapping back to zero.
package timeoffset

import (
	"fmt"
	"time"
)

// TimeOffset is a number of seconds since the midnight that starts a
// service day. It may exceed 24*60*60 for trips that run past midnight.
type TimeOffset int

// Zero is midnight itself.
const Zero TimeOffset = 0

// FromHMS builds a TimeOffset from hours, minutes and seconds. hours may be
// 24 or greater to express a next-day time within the same service day.
func FromHMS(hours, minutes, seconds int) TimeOffset {
	return TimeOffset(hours*3600 + minutes*60 + seconds)
}

// FromDuration converts a time.Duration measured from midnight.
func FromDuration(d time.Duration) TimeOffset {
	return TimeOffset(d / time.Second)
}

// Duration returns the offset as a time.Duration.
func (t TimeOffset) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

// Add returns t advanced by d.
func (t TimeOffset) Add(d time.Duration) TimeOffset {
	return t + FromDuration(d)
}

// At resolves the offset against the midnight of serviceDate, producing an
// absolute time in serviceDate's location.
func (t TimeOffset) At(serviceDate time.Time) time.Time {
	midnight := time.Date(serviceDate.Year(), serviceDate.Month(), serviceDate.Day(),
		0, 0, 0, 0, serviceDate.Location())
	return midnight.Add(t.Duration())
}

// Hours, Minutes and Seconds decompose the offset back into HH:MM:SS parts,
// with Hours potentially 24 or greater.
func (t TimeOffset) Hours() int   { return int(t) / 3600 }
func (t TimeOffset) Minutes() int { return (int(t) % 3600) / 60 }
func (t TimeOffset) Seconds() int { return int(t) % 60 }

// String renders the offset as HH:MM:SS, allowing hours past 24.
func (t TimeOffset) String() string {
	sign := ""
	v := t
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, v.Hours(), v.Minutes(), v.Seconds())
}

// Before reports whether t occurs strictly earlier than other.
func (t TimeOffset) Before(other TimeOffset) bool { return t < other }

// After reports whether t occurs strictly later than other.
func (t TimeOffset) After(other TimeOffset) bool { return t > other }
