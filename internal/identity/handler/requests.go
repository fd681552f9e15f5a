package handler

import (
	"strings"
	"time"

	"voluntr/internal/identity/models"
	orgmodels "voluntr/internal/organization/models"
	dErrors "voluntr/pkg/domain-errors"
)

// VolunteerOnboardingRequest is the body of POST /onboarding/volunteer.
type VolunteerOnboardingRequest struct {
	LegalName     string   `json:"legal_name" validate:"required,max=160"`
	Phone         string   `json:"phone" validate:"required,max=32"`
	DateOfBirth   string   `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Location      string   `json:"location" validate:"max=200"`
	MaxDistanceKm int      `json:"max_distance_km" validate:"gte=0,lte=1000"`
	Skills        []string `json:"skills" validate:"max=30,dive,max=60"`
	Interests     []string `json:"interests" validate:"max=30,dive,max=60"`
}

// Profile converts the request, rejecting birth dates in the future.
func (r *VolunteerOnboardingRequest) Profile() (models.VolunteerProfile, error) {
	p := models.VolunteerProfile{
		LegalName:     r.LegalName,
		Phone:         r.Phone,
		Location:      r.Location,
		MaxDistanceKm: r.MaxDistanceKm,
		Skills:        r.Skills,
		Interests:     r.Interests,
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, r.DateOfBirth)
		if err != nil {
			return models.VolunteerProfile{}, dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
		}
		if dob.After(time.Now()) {
			return models.VolunteerProfile{}, dErrors.New(dErrors.CodeValidation, "date_of_birth cannot be in the future")
		}
		p.DateOfBirth = &dob
	}
	return p, nil
}

// NGOOnboardingRequest is the body of POST /onboarding/ngo.
type NGOOnboardingRequest struct {
	Name                string   `json:"name" validate:"required,max=160"`
	RegistrationNumber  string   `json:"registration_number" validate:"max=80"`
	RegistrationDocsURL string   `json:"registration_docs_url" validate:"omitempty,url"`
	TaxID               string   `json:"tax_id" validate:"max=80"`
	Description         string   `json:"description" validate:"max=5000"`
	LogoURL             string   `json:"logo_url" validate:"omitempty,url"`
	GalleryURLs         []string `json:"gallery_urls" validate:"max=12,dive,url"`
	ContactName         string   `json:"contact_name" validate:"max=160"`
	ContactDesignation  string   `json:"contact_designation" validate:"max=120"`
}

func (r *NGOOnboardingRequest) Normalize() {
	r.RegistrationNumber = strings.ToUpper(r.RegistrationNumber)
}

func (r *NGOOnboardingRequest) Profile() orgmodels.Profile {
	return orgmodels.Profile{
		Name:                r.Name,
		RegistrationNumber:  r.RegistrationNumber,
		RegistrationDocsURL: r.RegistrationDocsURL,
		TaxID:               r.TaxID,
		Description:         r.Description,
		LogoURL:             r.LogoURL,
		GalleryURLs:         r.GalleryURLs,
		ContactName:         r.ContactName,
		ContactDesignation:  r.ContactDesignation,
	}
}
