// Package domain holds shared identifier types. IDs are distinct types over
// uuid.UUID so the compiler rejects mixing an attempt ID with a banker ID.
// Construct them via the Parse functions at trust boundaries; direct casting
// bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "veriface/pkg/domain-errors"
)

// AttemptID identifies one verification attempt. The decision slot for an
// attempt shares the same ID, so it doubles as the decision_id on the wire.
type AttemptID uuid.UUID

// BankerID identifies an authenticated bank officer.
type BankerID uuid.UUID

// NewAttemptID generates a fresh random attempt ID.
func NewAttemptID() AttemptID { return AttemptID(uuid.New()) }

// NewBankerID generates a fresh random banker ID. Production banker IDs come
// from token claims; this is for fixtures and development tooling.
func NewBankerID() BankerID { return BankerID(uuid.New()) }

// ParseAttemptID validates external input into an AttemptID.
// Errors: CodeInvalidInput when empty, malformed, or the nil UUID.
func ParseAttemptID(s string) (AttemptID, error) {
	u, err := parseUUID(s, "attempt_id")
	if err != nil {
		return AttemptID{}, err
	}
	return AttemptID(u), nil
}

// ParseBankerID validates external input into a BankerID.
// Errors: CodeInvalidInput when empty, malformed, or the nil UUID.
func ParseBankerID(s string) (BankerID, error) {
	u, err := parseUUID(s, "banker_id")
	if err != nil {
		return BankerID{}, err
	}
	return BankerID(u), nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be the nil UUID")
	}
	return u, nil
}

func (id AttemptID) String() string { return uuid.UUID(id).String() }
func (id AttemptID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText / UnmarshalText keep IDs as canonical UUID strings in JSON.
func (id AttemptID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AttemptID) UnmarshalText(data []byte) error {
	u, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = AttemptID(u)
	return nil
}

func (id BankerID) String() string { return uuid.UUID(id).String() }
func (id BankerID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id BankerID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *BankerID) UnmarshalText(data []byte) error {
	u, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = BankerID(u)
	return nil
}
