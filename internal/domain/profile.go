package domain

import "time"

// Profile is the subset of user data the scoring function looks at.
// Nil pointers mean the caller did not supply a value.
type Profile struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *time.Time
	Gender    *Gender
}
