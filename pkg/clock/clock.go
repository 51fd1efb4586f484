// Package clock abstracts time for services that need deterministic tests
package clock

import "time"

// SystemClock is the production clock backed by the standard library
type SystemClock struct{}

// After returns a channel that delivers the current time after the given duration
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}
