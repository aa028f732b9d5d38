package engine

import "github.com/google/uuid"

// UUIDv7Generator generates time-sortable UUIDv7 run IDs, so runs listed from
// the store sort by start time.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
