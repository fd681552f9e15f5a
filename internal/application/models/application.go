package models

import (
	"time"

	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseDecision accepts only the statuses an organization can decide.
// Pending is reachable solely through creation.
func ParseDecision(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "status must be approved or rejected")
	}
}

// Application is a volunteer's request to join an event.
//
// Invariants:
//   - at most one Application per (EventID, AccountID)
//   - OrganizationID mirrors the event's owner at creation time
//   - only pending applications may be cancelled
type Application struct {
	ID             id.ApplicationID  `json:"id"`
	EventID        id.EventID        `json:"event_id"`
	OrganizationID id.OrganizationID `json:"organization_id"`
	AccountID      id.AccountID      `json:"account_id"`
	Status         Status            `json:"status"`
	AppliedAt      time.Time         `json:"applied_at"`
	DecidedAt      *time.Time        `json:"decided_at,omitempty"`
}

func NewApplication(appID id.ApplicationID, eventID id.EventID, orgID id.OrganizationID, accountID id.AccountID, now time.Time) *Application {
	return &Application{
		ID:             appID,
		EventID:        eventID,
		OrganizationID: orgID,
		AccountID:      accountID,
		Status:         StatusPending,
		AppliedAt:      now,
	}
}

func (a *Application) ApplicantID() id.AccountID {
	return a.AccountID
}

func (a *Application) OwnerOrganizationID() id.OrganizationID {
	return a.OrganizationID
}

func (a *Application) IsPending() bool {
	return a.Status == StatusPending
}

func (a *Application) CanCancel() error {
	if !a.IsPending() {
		return dErrors.New(dErrors.CodeInvariantViolation, "only pending applications can be cancelled")
	}
	return nil
}

// Decide sets a decided status. Any status may be re-decided.
func (a *Application) Decide(status Status, now time.Time) {
	a.Status = status
	a.DecidedAt = &now
}
