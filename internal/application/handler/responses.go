package handler

import "voluntr/internal/application/models"

type ListResponse[T any] struct {
	Applications []T `json:"applications"`
}

type MyApplicationResponse struct {
	Application *models.Application `json:"application"`
}
