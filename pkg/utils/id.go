package utils

import "github.com/google/uuid"

// GenerateID returns a new random (v4) UUID string. Every stored record and
// uploaded file is named with one.
func GenerateID() string {
	return uuid.New().String()
}
