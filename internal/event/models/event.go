package models

import (
	"strings"
	"time"

	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	"voluntr/pkg/platform/tags"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCompleted Status = "completed"
)

// Event is a volunteering opportunity owned by one organization.
//
// Invariants:
//   - RequiredVolunteers > 0
//   - Attendees has set semantics: each account appears at most once
//   - Attendees changes only as a side effect of application decisions
type Event struct {
	ID                 id.EventID        `json:"id"`
	OrganizationID     id.OrganizationID `json:"organization_id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Location           string            `json:"location"`
	Date               time.Time         `json:"date"`
	RequiredVolunteers int               `json:"required_volunteers"`
	ImageURL           string            `json:"image_url,omitempty"`
	Category           string            `json:"category,omitempty"`
	Causes             []string          `json:"causes"`
	Skills             []string          `json:"skills"`
	Status             Status            `json:"status"`
	Attendees          []id.AccountID    `json:"attendees"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Draft is the caller-supplied part of a new event.
type Draft struct {
	Title              string
	Description        string
	Location           string
	Date               time.Time
	RequiredVolunteers int
	ImageURL           string
	Category           string
	Causes             []string
	Skills             []string
}

func NewEvent(eventID id.EventID, orgID id.OrganizationID, d Draft, now time.Time) (*Event, error) {
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event requires an owning organization")
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event title cannot be empty")
	}
	if strings.TrimSpace(d.Location) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event location cannot be empty")
	}
	if d.RequiredVolunteers <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "required volunteers must be positive")
	}
	if d.Date.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event date is required")
	}
	return &Event{
		ID:                 eventID,
		OrganizationID:     orgID,
		Title:              title,
		Description:        strings.TrimSpace(d.Description),
		Location:           strings.TrimSpace(d.Location),
		Date:               d.Date.UTC(),
		RequiredVolunteers: d.RequiredVolunteers,
		ImageURL:           d.ImageURL,
		Category:           strings.TrimSpace(d.Category),
		Causes:             tags.Normalize(d.Causes),
		Skills:             tags.Normalize(d.Skills),
		Status:             StatusOpen,
		Attendees:          []id.AccountID{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (e *Event) IsOpen() bool {
	return e.Status == StatusOpen
}

// OwnerOrganizationID satisfies the access-control ownership contract.
func (e *Event) OwnerOrganizationID() id.OrganizationID {
	return e.OrganizationID
}

func (e *Event) HasAttendee(accountID id.AccountID) bool {
	for _, a := range e.Attendees {
		if a == accountID {
			return true
		}
	}
	return false
}

// AddAttendee is idempotent. It reports whether the set changed.
func (e *Event) AddAttendee(accountID id.AccountID) bool {
	if e.HasAttendee(accountID) {
		return false
	}
	e.Attendees = append(e.Attendees, accountID)
	return true
}

// RemoveAttendee is idempotent. It reports whether the set changed.
func (e *Event) RemoveAttendee(accountID id.AccountID) bool {
	for i, a := range e.Attendees {
		if a == accountID {
			e.Attendees = append(e.Attendees[:i], e.Attendees[i+1:]...)
			return true
		}
	}
	return false
}

// RemainingCapacity is the number of open slots. It bottoms out at zero when
// the advisory capacity policy has admitted more attendees than required.
func (e *Event) RemainingCapacity() int {
	return max(e.RequiredVolunteers-len(e.Attendees), 0)
}

// MatchesText reports a case-insensitive substring match on location or title.
func (e *Event) MatchesText(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Location), q) || strings.Contains(strings.ToLower(e.Title), q)
}

// MatchesCause reports whether cause equals the category or one of the causes.
func (e *Event) MatchesCause(cause string) bool {
	cause = strings.TrimSpace(cause)
	if cause == "" {
		return true
	}
	return strings.EqualFold(e.Category, cause) || tags.ContainsFold(e.Causes, cause)
}

// Filter narrows the discoverable listing.
type Filter struct {
	Text  string
	Cause string
	// OrganizationIDs restricts results when non-nil (verified-only policy).
	OrganizationIDs []id.OrganizationID
}
