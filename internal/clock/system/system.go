// Package system provides the wall clock used for record timestamps.
package system

import "time"

// Clock implements opportunity.Clock using time.Now. Timestamps are
// truncated to microseconds so they survive a round trip through Postgres
// timestamptz columns unchanged.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time at microsecond precision.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
