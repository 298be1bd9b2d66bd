package uuidx

import "github.com/google/uuid"

// New generates a new UUID using the version 7 format and returns it.
// It panics if the UUID generation fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString generates a new UUID using the version 7 format and returns it as a string.
// Version 7 identifiers sort by creation time, which keeps identifiers minted
// in sequence (such as plugin registration keys) in a stable order.
func NewString() string {
	return New().String()
}
