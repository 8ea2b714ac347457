package clock

import "time"

// SystemClock returns the current wall-clock time in the server's local zone.
// The admin token window is defined on the local hour, so no UTC conversion here.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now() }
