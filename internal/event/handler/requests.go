package handler

import (
	"strings"
	"time"

	"voluntr/internal/event/models"
	"voluntr/pkg/platform/tags"
)

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title              string    `json:"title" validate:"required,max=200"`
	Description        string    `json:"description" validate:"max=5000"`
	Location           string    `json:"location" validate:"required,max=200"`
	Date               time.Time `json:"date" validate:"required"`
	RequiredVolunteers int       `json:"required_volunteers" validate:"gt=0,lte=10000"`
	ImageURL           string    `json:"image_url" validate:"omitempty,url"`
	Category           string    `json:"category" validate:"max=80"`
	Causes             []string  `json:"causes" validate:"max=20,dive,max=60"`
	Skills             []string  `json:"skills" validate:"max=20,dive,max=60"`
}

func (r *CreateEventRequest) Normalize() {
	r.Category = strings.ToLower(r.Category)
	r.Causes = tags.Normalize(r.Causes)
	r.Skills = tags.Normalize(r.Skills)
}

func (r *CreateEventRequest) Draft() models.Draft {
	return models.Draft{
		Title:              r.Title,
		Description:        r.Description,
		Location:           r.Location,
		Date:               r.Date,
		RequiredVolunteers: r.RequiredVolunteers,
		ImageURL:           r.ImageURL,
		Category:           r.Category,
		Causes:             r.Causes,
		Skills:             r.Skills,
	}
}
