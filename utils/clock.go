package utils

import "time"

// Clock supplies time to the services so tests can control it.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
