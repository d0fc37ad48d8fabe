package titles

// CreateTitlePayload represents the request body for creating a title.
type CreateTitlePayload struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Author   string  `json:"author" validate:"required,max=120"`
	CoAuthor *string `json:"co_author" validate:"omitempty,max=120"`
}

// UpdateTitlePayload represents the request body for updating a title.
type UpdateTitlePayload struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Author   *string `json:"author" validate:"omitempty,max=120"`
	CoAuthor *string `json:"co_author" validate:"omitempty,max=120"`
}

// ListTitlesQuery represents the query parameters for listing titles.
type ListTitlesQuery struct {
	Search *string `query:"search"`
	Limit  int     `query:"limit" default:"50"`
	Offset int     `query:"offset" default:"0"`
}
