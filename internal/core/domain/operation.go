// Package domain defines the core domain models for Ignite.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// OperationIDPrefix is the prefix for check operation identifiers.
const OperationIDPrefix = "igop-"

// GenerateOperationID generates a new check operation id using ULID.
// Format: igop-{ulid_lowercase}, 31 characters total. ULIDs sort
// lexicographically by creation time, which keeps the persisted
// operation history in chronological order.
func GenerateOperationID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return OperationIDPrefix + strings.ToLower(id.String()), nil
}

// ValidateOperationID checks the operation id format.
func ValidateOperationID(id string) error {
	if !strings.HasPrefix(id, OperationIDPrefix) {
		return ErrInvalidArgument.WithDetails("operation id must start with " + OperationIDPrefix)
	}
	ulidPart := strings.ToUpper(id[len(OperationIDPrefix):])
	if _, err := ulid.Parse(ulidPart); err != nil {
		return ErrInvalidArgument.WithDetails("operation id is not a valid ULID")
	}
	return nil
}
