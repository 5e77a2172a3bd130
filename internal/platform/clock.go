package platform

import "time"

// Clock abstracts wall-clock access so document timestamps and TTL checks
// can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
