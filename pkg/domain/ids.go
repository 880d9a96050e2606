// Package domain holds identifier types shared across the certification core.
//
// IDs are distinct named types over uuid.UUID so a RecordID can never be
// passed where an EntryID is expected. Construct from external input via the
// Parse helpers; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "brandcert/pkg/domain-errors"
)

// RecordID identifies a certification record.
type RecordID uuid.UUID

// EntryID identifies an audit trail entry.
type EntryID uuid.UUID

// NewRecordID returns a fresh random record ID.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// NewEntryID returns a fresh random audit entry ID.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

// ParseRecordID validates and converts an external string into a RecordID.
// Empty strings and the nil UUID are rejected with CodeValidation.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseID(s, "record id")
	if err != nil {
		return RecordID{}, err
	}
	return RecordID(u), nil
}

// ParseEntryID validates and converts an external string into an EntryID.
func ParseEntryID(s string) (EntryID, error) {
	u, err := parseID(s, "entry id")
	if err != nil {
		return EntryID{}, err
	}
	return EntryID(u), nil
}

func parseID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "invalid %s", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s cannot be the nil UUID", what)
	}
	return u, nil
}

func (r RecordID) String() string { return uuid.UUID(r).String() }
func (r RecordID) IsNil() bool    { return uuid.UUID(r) == uuid.Nil }

func (e EntryID) String() string { return uuid.UUID(e).String() }
func (e EntryID) IsNil() bool    { return uuid.UUID(e) == uuid.Nil }
