package handler

import (
	"voluntr/internal/identity/models"
	orgmodels "voluntr/internal/organization/models"
)

// MeResponse describes the session's account and where it should go next.
type MeResponse struct {
	Account      *models.Account         `json:"account"`
	State        models.OnboardingState  `json:"state"`
	NextRoute    string                  `json:"next_route"`
	Organization *orgmodels.Organization `json:"organization,omitempty"`
}

func NewMeResponse(a *models.Account) MeResponse {
	return MeResponse{Account: a, State: a.OnboardingState(), NextRoute: a.NextRoute()}
}
