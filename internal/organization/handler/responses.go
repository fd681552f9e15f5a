package handler

import (
	"time"

	eventmodels "voluntr/internal/event/models"
	"voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
)

// OrganizationResponse is the public profile. Tax and admin identifiers stay
// private.
type OrganizationResponse struct {
	ID                  id.OrganizationID         `json:"id"`
	Name                string                    `json:"name"`
	RegistrationNumber  string                    `json:"registration_number,omitempty"`
	RegistrationDocsURL string                    `json:"registration_docs_url,omitempty"`
	Description         string                    `json:"description,omitempty"`
	LogoURL             string                    `json:"logo_url,omitempty"`
	GalleryURLs         []string                  `json:"gallery_urls"`
	ContactName         string                    `json:"contact_name,omitempty"`
	ContactDesignation  string                    `json:"contact_designation,omitempty"`
	VerificationStatus  models.VerificationStatus `json:"verification_status"`
	CreatedAt           time.Time                 `json:"created_at"`
}

func FromOrganization(o *models.Organization) OrganizationResponse {
	gallery := o.GalleryURLs
	if gallery == nil {
		gallery = []string{}
	}
	return OrganizationResponse{
		ID:                  o.ID,
		Name:                o.Name,
		RegistrationNumber:  o.RegistrationNumber,
		RegistrationDocsURL: o.RegistrationDocsURL,
		Description:         o.Description,
		LogoURL:             o.LogoURL,
		GalleryURLs:         gallery,
		ContactName:         o.ContactName,
		ContactDesignation:  o.ContactDesignation,
		VerificationStatus:  o.VerificationStatus,
		CreatedAt:           o.CreatedAt,
	}
}

type ListResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
}

type DetailResponse struct {
	OrganizationResponse
	Events []*eventmodels.Event `json:"events"`
}
