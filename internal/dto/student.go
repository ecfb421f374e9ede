package dto

// CreateStudentRequest registers a new student.
type CreateStudentRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
}

// UpdateStudentRequest patches student contact or status attributes.
type UpdateStudentRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Status   *string `json:"status" validate:"omitempty,oneof=ACTIVE SUSPENDED GRADUATED"`
}
