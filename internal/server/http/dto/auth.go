package dto

// AuthRequest describes registration payload.
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token string `json:"token"`
}

// LoginRequest describes login payload. Password rules are not re-checked on login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
