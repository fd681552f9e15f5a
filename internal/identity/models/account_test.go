package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
)

func TestNewAccount(t *testing.T) {
	t.Run("lowercases email and starts without role", func(t *testing.T) {
		a, err := NewAccount(id.NewAccountID(), ExternalIdentity{Email: " Asha@Example.ORG ", DisplayName: "Asha"}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, "asha@example.org", a.Email)
		assert.Empty(t, a.Role)
		assert.False(t, a.ProfileComplete)
		assert.Equal(t, StateAuthenticatedNoRole, a.OnboardingState())
		assert.Equal(t, RouteOnboarding, a.NextRoute())
	})

	t.Run("derives a display name when the provider sends none", func(t *testing.T) {
		a, err := NewAccount(id.NewAccountID(), ExternalIdentity{Email: "asha.rao@example.org"}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", a.DisplayName)
	})

	t.Run("fails closed without email", func(t *testing.T) {
		_, err := NewAccount(id.NewAccountID(), ExternalIdentity{DisplayName: "No Mail"}, time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestOnboardingGuard(t *testing.T) {
	a, err := NewAccount(id.NewAccountID(), ExternalIdentity{Email: "v@example.org"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, a.CanCompleteOnboarding(RoleVolunteer))
	a.CompleteVolunteer(VolunteerProfile{LegalName: "Vee", Skills: []string{"Cooking", "cooking"}}, time.Now())

	assert.Equal(t, StateOnboarded, a.OnboardingState())
	assert.Equal(t, RouteVolunteerDashboard, a.NextRoute())
	assert.Equal(t, []string{"Cooking"}, a.Skills)

	t.Run("same role again is allowed", func(t *testing.T) {
		assert.NoError(t, a.CanCompleteOnboarding(RoleVolunteer))
	})

	t.Run("different role is rejected", func(t *testing.T) {
		err := a.CanCompleteOnboarding(RoleNGOAdmin)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestNGOAdminRoute(t *testing.T) {
	a, err := NewAccount(id.NewAccountID(), ExternalIdentity{Email: "n@example.org"}, time.Now())
	require.NoError(t, err)
	a.CompleteNGOAdmin(time.Now())
	assert.Equal(t, RouteNGODashboard, a.NextRoute())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("ngo_admin")
	require.NoError(t, err)
	assert.Equal(t, RoleNGOAdmin, r)

	_, err = ParseRole("admin")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestApplicantName(t *testing.T) {
	assert.Equal(t, "Legal", Applicant{LegalName: "Legal", DisplayName: "Display"}.Name())
	assert.Equal(t, "Display", Applicant{DisplayName: "Display"}.Name())
}
