package copies

// CreateCopyPayload represents the request body for creating a copy.
type CreateCopyPayload struct {
	TitleID         int    `json:"title_id" validate:"required"`
	AcquisitionDate string `json:"acquisition_date" validate:"required,date"`
}

// UpdateCopyPayload represents the request body for updating a copy.
type UpdateCopyPayload struct {
	TitleID         *int    `json:"title_id"`
	AcquisitionDate *string `json:"acquisition_date" validate:"omitempty,date"`
}

// ListCopiesQuery represents the query parameters for listing copies.
type ListCopiesQuery struct {
	Search    *string `query:"search"`
	Available *bool   `query:"available"`
	Limit     int     `query:"limit" default:"50"`
	Offset    int     `query:"offset" default:"0"`
}
