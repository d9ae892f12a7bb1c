package utilities

import (
	"github.com/segmentio/ksuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewObjectID returns a fresh 24-character hex document id. Every storage
// backend uses this shape so id validation behaves the same everywhere.
func NewObjectID() string {
	return primitive.NewObjectID().Hex()
}

// IsObjectID reports whether s is a well-formed document id.
func IsObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// CanonicalObjectID parses s and returns it in the lowercase form every
// store keys on. ok is false for a malformed id.
func CanonicalObjectID(s string) (id string, ok bool) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

// NewRequestID generates a new globally unique KSUID string used to
// correlate log lines of a single request.
func NewRequestID() string {
	return ksuid.New().String()
}
