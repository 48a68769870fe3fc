package dto

import "time"

// CreateUserRequest entrada para aprovisionar un usuario (password en texto,
// se hashea en el use case).
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,max=200"`
	Role        string `json:"role" validate:"omitempty,oneof=admin standard"`
}

// UserResponse salida de un usuario (sin credenciales).
type UserResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	DisplayName    string     `json:"display_name,omitempty"`
	Role           string     `json:"role"`
	IsActive       bool       `json:"is_active"`
	LoginMethod    string     `json:"login_method"`
	FacialEnrolled bool       `json:"facial_enrolled"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LoginRequest entrada para login. Según Method se usa Password o Descriptor.
type LoginRequest struct {
	Email      string    `json:"email" validate:"required,email"`
	Method     string    `json:"method" validate:"omitempty,oneof=password facial"`
	Password   string    `json:"password" validate:"omitempty"`
	Descriptor []float64 `json:"descriptor" validate:"omitempty"`
}

// LoginResponse salida con token de sesión JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ForgotPasswordRequest entrada para solicitar restablecimiento.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest entrada para canjear un token de restablecimiento.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// EnrollFacialRequest entrada para enrolar la credencial facial.
type EnrollFacialRequest struct {
	Descriptor []float64 `json:"descriptor" validate:"required"`
	Metadata   string    `json:"metadata" validate:"omitempty,max=500"`
}

// SetLoginMethodRequest entrada para cambiar el método de login activo.
type SetLoginMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=password facial"`
}
