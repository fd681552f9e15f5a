package models

import (
	"strings"
	"time"

	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	emailaddr "voluntr/pkg/email"
	"voluntr/pkg/platform/tags"
)

type Role string

const (
	RoleVolunteer Role = "volunteer"
	RoleNGOAdmin  Role = "ngo_admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleVolunteer, RoleNGOAdmin:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "role must be volunteer or ngo_admin")
	}
}

// OnboardingState is the account's position in the onboarding state machine.
// Unauthenticated callers never reach an account, so only two states exist here.
type OnboardingState string

const (
	StateAuthenticatedNoRole OnboardingState = "authenticated_no_role"
	StateOnboarded           OnboardingState = "onboarded"
)

const (
	RouteOnboarding         = "/onboarding"
	RouteVolunteerDashboard = "/dashboard/volunteer"
	RouteNGODashboard       = "/dashboard/ngo"
)

// ExternalIdentity is what the identity provider vouches for after login.
type ExternalIdentity struct {
	Email       string
	DisplayName string
	AvatarURL   string
	Provider    string
	Subject     string
}

// Account is a person using the system.
//
// Invariants:
//   - Email is lowercase and unique
//   - Role, once set, never changes
//   - ProfileComplete is true iff onboarding for Role has completed
type Account struct {
	ID              id.AccountID `json:"id"`
	Email           string       `json:"email"`
	DisplayName     string       `json:"display_name"`
	AvatarURL       string       `json:"avatar_url,omitempty"`
	Provider        string       `json:"-"`
	ProviderSubject string       `json:"-"`
	Role            Role         `json:"role,omitempty"`
	ProfileComplete bool         `json:"is_profile_complete"`

	// Volunteer profile.
	LegalName     string     `json:"legal_name,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Location      string     `json:"location,omitempty"`
	MaxDistanceKm int        `json:"max_distance_km,omitempty"`
	Skills        []string   `json:"skills"`
	Interests     []string   `json:"interests"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VolunteerProfile carries the fields set by volunteer onboarding.
type VolunteerProfile struct {
	LegalName     string
	Phone         string
	DateOfBirth   *time.Time
	Location      string
	MaxDistanceKm int
	Skills        []string
	Interests     []string
}

// NewAccount creates an account with no role from an external identity.
// An identity without an email cannot be joined to an account.
func NewAccount(accountID id.AccountID, ext ExternalIdentity, now time.Time) (*Account, error) {
	email := NormalizeEmail(ext.Email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "identity provider returned no email")
	}
	provider := ext.Provider
	if provider == "" {
		provider = "google"
	}
	displayName := strings.TrimSpace(ext.DisplayName)
	if displayName == "" {
		displayName = emailaddr.DisplayName(email)
	}
	return &Account{
		ID:              accountID,
		Email:           email,
		DisplayName:     displayName,
		AvatarURL:       ext.AvatarURL,
		Provider:        provider,
		ProviderSubject: ext.Subject,
		Skills:          []string{},
		Interests:       []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Account) OnboardingState() OnboardingState {
	if a.ProfileComplete && a.Role != "" {
		return StateOnboarded
	}
	return StateAuthenticatedNoRole
}

func (a *Account) IsOnboarded() bool {
	return a.OnboardingState() == StateOnboarded
}

// NextRoute is where a session for this account should land.
func (a *Account) NextRoute() string {
	if !a.IsOnboarded() {
		return RouteOnboarding
	}
	return DashboardRoute(a.Role)
}

func DashboardRoute(role Role) string {
	if role == RoleNGOAdmin {
		return RouteNGODashboard
	}
	return RouteVolunteerDashboard
}

// CanCompleteOnboarding guards the one-shot role assignment: a role already
// set can only be completed again with the same role.
func (a *Account) CanCompleteOnboarding(role Role) error {
	if a.Role != "" && a.Role != role {
		return dErrors.New(dErrors.CodeInvariantViolation, "account role is already assigned as "+string(a.Role))
	}
	return nil
}

// CompleteVolunteer fixes the volunteer role and overwrites profile fields.
func (a *Account) CompleteVolunteer(p VolunteerProfile, now time.Time) {
	a.Role = RoleVolunteer
	a.LegalName = strings.TrimSpace(p.LegalName)
	a.Phone = strings.TrimSpace(p.Phone)
	a.DateOfBirth = p.DateOfBirth
	a.Location = strings.TrimSpace(p.Location)
	a.MaxDistanceKm = p.MaxDistanceKm
	a.Skills = tags.Normalize(p.Skills)
	a.Interests = tags.Normalize(p.Interests)
	a.ProfileComplete = true
	a.UpdatedAt = now
}

// CompleteNGOAdmin fixes the ngo_admin role. The organization itself lives in
// the registry and links back through its admin account id.
func (a *Account) CompleteNGOAdmin(now time.Time) {
	a.Role = RoleNGOAdmin
	a.ProfileComplete = true
	a.UpdatedAt = now
}

// RefreshIdentity updates provider-sourced display fields on login.
func (a *Account) RefreshIdentity(ext ExternalIdentity, now time.Time) bool {
	name := strings.TrimSpace(ext.DisplayName)
	changed := false
	if name != "" && name != a.DisplayName {
		a.DisplayName = name
		changed = true
	}
	if ext.AvatarURL != "" && ext.AvatarURL != a.AvatarURL {
		a.AvatarURL = ext.AvatarURL
		changed = true
	}
	if changed {
		a.UpdatedAt = now
	}
	return changed
}

// Applicant is the contact subset shown to organizations reviewing applications.
type Applicant struct {
	ID          id.AccountID `json:"id"`
	DisplayName string       `json:"display_name"`
	LegalName   string       `json:"legal_name,omitempty"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone,omitempty"`
	Location    string       `json:"location,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Skills      []string     `json:"skills"`
}

func (a *Account) Applicant() Applicant {
	return Applicant{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		LegalName:   a.LegalName,
		Email:       a.Email,
		Phone:       a.Phone,
		Location:    a.Location,
		AvatarURL:   a.AvatarURL,
		Skills:      a.Skills,
	}
}

// Name prefers the legal name captured at onboarding.
func (a Applicant) Name() string {
	if a.LegalName != "" {
		return a.LegalName
	}
	return a.DisplayName
}
