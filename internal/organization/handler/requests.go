package handler

type VerificationRequest struct {
	Status string `json:"status" validate:"required"`
}
