// Package domain holds the typed identifiers shared by every module.
//
// Each aggregate gets its own named UUID type so an EventID can never be passed
// where an ApplicationID is expected. Parse functions are the trust boundary for
// identifiers arriving from URLs, tokens, and request bodies.
package domain

import (
	"github.com/google/uuid"

	dErrors "voluntr/pkg/domain-errors"
)

type (
	AccountID      uuid.UUID
	OrganizationID uuid.UUID
	EventID        uuid.UUID
	ApplicationID  uuid.UUID
	SessionID      uuid.UUID
)

func (i AccountID) String() string      { return uuid.UUID(i).String() }
func (i OrganizationID) String() string { return uuid.UUID(i).String() }
func (i EventID) String() string        { return uuid.UUID(i).String() }
func (i ApplicationID) String() string  { return uuid.UUID(i).String() }
func (i SessionID) String() string      { return uuid.UUID(i).String() }

func (i AccountID) IsNil() bool      { return uuid.UUID(i) == uuid.Nil }
func (i OrganizationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i EventID) IsNil() bool        { return uuid.UUID(i) == uuid.Nil }
func (i ApplicationID) IsNil() bool  { return uuid.UUID(i) == uuid.Nil }
func (i SessionID) IsNil() bool      { return uuid.UUID(i) == uuid.Nil }

func (i AccountID) MarshalText() ([]byte, error)      { return []byte(i.String()), nil }
func (i OrganizationID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i EventID) MarshalText() ([]byte, error)        { return []byte(i.String()), nil }
func (i ApplicationID) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (i SessionID) MarshalText() ([]byte, error)      { return []byte(i.String()), nil }

func (i *AccountID) UnmarshalText(b []byte) error {
	return unmarshalID(b, (*uuid.UUID)(i))
}

func (i *OrganizationID) UnmarshalText(b []byte) error {
	return unmarshalID(b, (*uuid.UUID)(i))
}

func (i *EventID) UnmarshalText(b []byte) error {
	return unmarshalID(b, (*uuid.UUID)(i))
}

func (i *ApplicationID) UnmarshalText(b []byte) error {
	return unmarshalID(b, (*uuid.UUID)(i))
}

func (i *SessionID) UnmarshalText(b []byte) error {
	return unmarshalID(b, (*uuid.UUID)(i))
}

func unmarshalID(b []byte, dst *uuid.UUID) error {
	parsed, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

func NewAccountID() AccountID           { return AccountID(uuid.New()) }
func NewOrganizationID() OrganizationID { return OrganizationID(uuid.New()) }
func NewEventID() EventID               { return EventID(uuid.New()) }
func NewApplicationID() ApplicationID   { return ApplicationID(uuid.New()) }
func NewSessionID() SessionID           { return SessionID(uuid.New()) }

// ParseAccountID parses an account identifier, rejecting empty and nil UUIDs.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account")
	return AccountID(u), err
}

func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parseUUID(s, "organization")
	return OrganizationID(u), err
}

func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event")
	return EventID(u), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application")
	return ApplicationID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session")
	return SessionID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}
