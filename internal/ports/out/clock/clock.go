package clock

import "time"

// Clock provides time to the application.
// Token windows, cache expiry and age checks all read it, so tests can pin it.
type Clock interface {
	Now() time.Time
}
