package engine

import "time"

// Clock supplies time to the engine so phase timing and detection timestamps
// are testable without a real clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
