package dto

// CreateShiftRequest defines payload for creating a shift template.
type CreateShiftRequest struct {
	Name      string `json:"name" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Overnight bool   `json:"overnight"`
	Capacity  int    `json:"capacity" validate:"required,min=1"`
	Zone      string `json:"zone" validate:"required"`
}

// UpdateShiftRequest patches an existing shift. Nil fields are untouched.
type UpdateShiftRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Overnight *bool   `json:"overnight"`
	Capacity  *int    `json:"capacity" validate:"omitempty,min=1"`
	Zone      *string `json:"zone" validate:"omitempty,min=1"`
}
