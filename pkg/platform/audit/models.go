package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "voluntr/pkg/domain"
)

// Action names a state change worth recording.
type Action string

const (
	ActionAccountCreated                  Action = "account_created"
	ActionOnboardingCompleted             Action = "onboarding_completed"
	ActionOrganizationRegistered          Action = "organization_registered"
	ActionOrganizationVerificationChanged Action = "organization_verification_changed"
	ActionEventCreated                    Action = "event_created"
	ActionApplicationSubmitted            Action = "application_submitted"
	ActionApplicationCancelled            Action = "application_cancelled"
	ActionApplicationDecided              Action = "application_decided"
)

// Event is emitted from services inside the transaction that performs the
// change, so the record commits or rolls back with it.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	Action    Action       `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
	AccountID id.AccountID `json:"account_id,omitempty"`
	// Subject is the primary entity affected, e.g. an application or event ID.
	Subject   string `json:"subject"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	// Device is a coarse client label such as "Firefox 128 on Linux".
	Device string `json:"device,omitempty"`
	// ActorID is set when someone other than AccountID performed the action.
	ActorID string `json:"actor_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
