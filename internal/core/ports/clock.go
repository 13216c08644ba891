package ports

import "time"

// Clock returns the current time. Phase and price computations never read
// the system clock directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
