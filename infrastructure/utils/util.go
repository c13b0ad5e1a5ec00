package utils

import "time"

// Clock returns the current time. Stores take a Clock so tests can pin "now".
type Clock func() time.Time

func GetCurrentTime() time.Time {
	return time.Now()
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
