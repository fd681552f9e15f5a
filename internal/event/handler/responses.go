package handler

import (
	"voluntr/internal/event/models"
	"voluntr/internal/event/service"
)

type ListResponse[T any] struct {
	Events []T `json:"events"`
}

type DashboardResponse struct {
	Stats  service.Stats   `json:"stats"`
	Events []*models.Event `json:"events"`
}
