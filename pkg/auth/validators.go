package auth

// LoginPayload represents the request body for logging in.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetupPayload represents the request body for creating the first user.
type SetupPayload struct {
	Name                 string `json:"name" validate:"required,max=200"`
	Phone                string `json:"phone" validate:"omitempty,max=20"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}
