package users

// CreateUserPayload represents the request body for creating a user.
type CreateUserPayload struct {
	Name                 string `json:"name" validate:"required,max=120"`
	Phone                string `json:"phone" validate:"required,max=40"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// UpdateUserPayload represents the request body for updating a user. Password
// changes go through a separate flow.
type UpdateUserPayload struct {
	Name  *string `json:"name" validate:"omitempty,max=120"`
	Phone *string `json:"phone" validate:"omitempty,max=40"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	Search *string `query:"search"`
	Limit  int     `query:"limit" default:"50"`
	Offset int     `query:"offset" default:"0"`
}
