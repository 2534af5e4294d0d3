package utils

import "github.com/google/uuid"

// UUIDGenerator produces identifiers for devices and sync runs.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a time-ordered UUIDv7, falling back to v4.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// IsValidUUID reports whether s parses as a UUID. Device identifiers read
// from disk are checked with it before reuse.
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
