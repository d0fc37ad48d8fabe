package loans

// CreateLoanPayload represents the request body for checking out a copy.
type CreateLoanPayload struct {
	UserID  int     `json:"user_id" validate:"required"`
	CopyID  int     `json:"copy_id" validate:"required"`
	DueDate *string `json:"due_date" validate:"omitempty,date"`
}

// UpdateLoanPayload represents the request body for updating a loan. Only the
// due date can change.
type UpdateLoanPayload struct {
	DueDate string `json:"due_date" validate:"required,date"`
}

// ListLoansQuery represents the query parameters for listing loans.
type ListLoansQuery struct {
	Search *string `query:"search"`
	Status *string `query:"status" validate:"omitempty,oneof=active returned overdue"`
	Limit  int     `query:"limit" default:"50"`
	Offset int     `query:"offset" default:"0"`
}
