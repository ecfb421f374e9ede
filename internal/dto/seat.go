package dto

// CreateSeatRequest defines payload for provisioning a seat.
type CreateSeatRequest struct {
	Label string `json:"label" validate:"required"`
	Floor int    `json:"floor" validate:"required,min=0"`
	Zone  string `json:"zone" validate:"required"`
}

// UpdateSeatRequest defines payload for editing seat attributes.
type UpdateSeatRequest struct {
	Label *string `json:"label" validate:"omitempty,min=1"`
	Floor *int    `json:"floor" validate:"omitempty,min=0"`
	Zone  *string `json:"zone" validate:"omitempty,min=1"`
}

// SetMaintenanceRequest toggles the maintenance flag on a seat.
type SetMaintenanceRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}
