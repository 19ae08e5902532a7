package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID random v4 UUID
func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateRunID identifier of one cleaning run; time-ordered so audit
// documents of consecutive runs sort by run
func GenerateRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// GenerateShortID first 8 hex characters of a random UUID
func GenerateShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// IsUUID reports whether s parses as a UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
