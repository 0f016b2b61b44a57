package auth

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Nickname string `json:"nickname" validate:"omitempty,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for authentication. Login accepts either
// an email address or a nickname.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ValidateSignup checks a signup payload against its constraints.
func ValidateSignup(req SignupRequest) error {
	return validate.Struct(req)
}

// ValidateLogin checks a login payload against its constraints.
func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}
