// Package id generates identifiers for players, teams and matches.
package id

import "github.com/google/uuid"

// Generator produces unique ids. Services accept one so tests can pin ids.
type Generator interface {
	NewID() string
}

// UUID generates random version 4 UUIDs.
type UUID struct{}

// NewID implements Generator.
func (UUID) NewID() string {
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
