package handler

import "strings"

// DecideRequest is the body of PATCH /events/{id}/applications/{appId}.
// Status is parsed by the service so unknown values surface as bad_request.
type DecideRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r *DecideRequest) Normalize() {
	r.Status = strings.ToLower(r.Status)
}
