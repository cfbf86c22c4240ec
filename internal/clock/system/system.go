// Package system adapts the wall clock to the crawler.Clock interface.
package system

import "time"

// Clock reads the system clock. Timestamps are always UTC so job records
// and progress events compare cleanly regardless of host timezone.
type Clock struct{}

// New creates a Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
