package models

import (
	"strings"
	"time"

	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
)

// VerificationStatus is set out-of-band by an operator.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// ParseVerificationStatus validates an operator-supplied status.
func ParseVerificationStatus(raw string) (VerificationStatus, error) {
	s := VerificationStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "status must be one of pending, verified, rejected")
	}
	return s, nil
}

// Organization is an NGO profile owned by exactly one ngo_admin account.
//
// Invariants:
//   - Name is non-empty, at most 160 characters, unique case-insensitively
//   - AdminAccountID never changes after creation
//   - VerificationStatus starts pending and is only changed by SetVerification
type Organization struct {
	ID                  id.OrganizationID  `json:"id"`
	AdminAccountID      id.AccountID       `json:"admin_account_id"`
	Name                string             `json:"name"`
	RegistrationNumber  string             `json:"registration_number,omitempty"`
	RegistrationDocsURL string             `json:"registration_docs_url,omitempty"`
	TaxID               string             `json:"tax_id,omitempty"`
	Description         string             `json:"description,omitempty"`
	LogoURL             string             `json:"logo_url,omitempty"`
	GalleryURLs         []string           `json:"gallery_urls"`
	ContactName         string             `json:"contact_name,omitempty"`
	ContactDesignation  string             `json:"contact_designation,omitempty"`
	VerificationStatus  VerificationStatus `json:"verification_status"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Profile holds the fields an admin submits during NGO onboarding.
type Profile struct {
	Name                string
	RegistrationNumber  string
	RegistrationDocsURL string
	TaxID               string
	Description         string
	LogoURL             string
	GalleryURLs         []string
	ContactName         string
	ContactDesignation  string
}

func (p Profile) validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization name cannot be empty")
	}
	if len(name) > 160 {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization name must be 160 characters or less")
	}
	return nil
}

func NewOrganization(orgID id.OrganizationID, admin id.AccountID, profile Profile, now time.Time) (*Organization, error) {
	if admin.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization requires an admin account")
	}
	if err := profile.validate(); err != nil {
		return nil, err
	}
	o := &Organization{
		ID:                 orgID,
		AdminAccountID:     admin,
		VerificationStatus: VerificationPending,
		CreatedAt:          now,
	}
	o.apply(profile, now)
	return o, nil
}

// UpdateProfile overwrites the submitted fields. Verification status is kept.
func (o *Organization) UpdateProfile(profile Profile, now time.Time) error {
	if err := profile.validate(); err != nil {
		return err
	}
	o.apply(profile, now)
	return nil
}

func (o *Organization) apply(p Profile, now time.Time) {
	o.Name = strings.TrimSpace(p.Name)
	o.RegistrationNumber = p.RegistrationNumber
	o.RegistrationDocsURL = p.RegistrationDocsURL
	o.TaxID = p.TaxID
	o.Description = p.Description
	o.LogoURL = p.LogoURL
	o.GalleryURLs = append([]string{}, p.GalleryURLs...)
	o.ContactName = p.ContactName
	o.ContactDesignation = p.ContactDesignation
	o.UpdatedAt = now
}

func (o *Organization) IsVerified() bool {
	return o.VerificationStatus == VerificationVerified
}

// CanSetVerification reports whether status is a change from the current one.
func (o *Organization) CanSetVerification(status VerificationStatus) error {
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown verification status")
	}
	if o.VerificationStatus == status {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization already has status "+string(status))
	}
	return nil
}

func (o *Organization) ApplyVerification(status VerificationStatus, now time.Time) {
	o.VerificationStatus = status
	o.UpdatedAt = now
}

// Summary is the subset embedded in event and application listings.
type Summary struct {
	ID                 id.OrganizationID  `json:"id"`
	Name               string             `json:"name"`
	LogoURL            string             `json:"logo_url,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

func (o *Organization) Summary() Summary {
	return Summary{ID: o.ID, Name: o.Name, LogoURL: o.LogoURL, VerificationStatus: o.VerificationStatus}
}
