package clock

import "time"

// Clock abstracts wall time so schedulers can be driven in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns the real clock.
func NewSystemClock() Clock {
	return systemClock{}
}
