package utils

import "github.com/google/uuid"

func NewID() string { return uuid.NewString() }

// ValidID reports whether s has the shape NewID produces.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
