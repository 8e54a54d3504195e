package services

import "time"

// Clock is the time source for debouncing and token expiry checks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the part of *time.Timer the services use.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

// SystemClock is backed by package time.
var SystemClock Clock = systemClock{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
