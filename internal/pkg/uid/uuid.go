package uid

import "github.com/google/uuid"

// UUID generates time-ordered RFC 9562 UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUID string.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RandomUUID generates version 4 UUIDs from crypto/rand. Its output carries
// no timing information, so it is used for identifiers handed to end users.
type RandomUUID struct{}

// NewRandomUUID returns a RandomUUID generator.
func NewRandomUUID() *RandomUUID {
	return &RandomUUID{}
}

// Generate returns a new random UUID string.
func (*RandomUUID) Generate() string {
	return uuid.NewString()
}
