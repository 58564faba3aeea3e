package metadata

import "github.com/google/uuid"

// NewObjectID mints a fresh 128-bit object identifier, rendered as the
// canonical UUIDv4 string form used throughout TagHeader.ObjectID.
func NewObjectID() string {
	return uuid.NewString()
}
