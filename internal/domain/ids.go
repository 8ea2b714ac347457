package domain

import "strconv"

// ClientID identifies a client whose interests are tracked in the backend.
type ClientID int64

// String renders the id the way it appears as a key in clients_interests responses.
func (id ClientID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// InterestsKey is the backend key holding the JSON interest list of a client.
func InterestsKey(id ClientID) string {
	return "i:" + id.String()
}
