package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Identidad-api/internal/application/auth"
	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/application/dto"
	"github.com/jhoicas/Identidad-api/internal/domain"
)

// AuthHandler maneja login y el flujo de restablecimiento de contraseña.
type AuthHandler struct {
	uc    *auth.AuthUseCase
	reset *credential.ResetService
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, reset *credential.ResetService) *AuthHandler {
	return &AuthHandler{uc: uc, reset: reset}
}

// Login godoc
// @Summary      Iniciar sesión (password o facial)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email + password o descriptor según method"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email es requerido"})
	}
	out, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(out)
}

// ForgotPassword godoc
// @Summary      Solicitar restablecimiento de contraseña
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ForgotPasswordRequest  true  "email"
// @Success      202   {object}  dto.MessageResponse
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var in dto.ForgotPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email es requerido"})
	}
	// La respuesta es idéntica exista o no la cuenta (anti-enumeración).
	h.reset.Issue(c.Context(), in.Email)
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{
		Message: "si la cuenta existe, se envió un enlace de restablecimiento",
	})
}

// ResetPassword godoc
// @Summary      Canjear token de restablecimiento
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetPasswordRequest  true  "token + nueva contraseña"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Token == "" || in.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token y new_password son requeridos"})
	}
	if err := h.reset.Redeem(c.Context(), in.Token, in.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		case errors.Is(err, domain.ErrWeakCredential):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "WEAK_PASSWORD", Message: "la contraseña no cumple la política mínima"})
		case errors.Is(err, domain.ErrStoreUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "intente más tarde"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

// authError respuesta uniforme del camino de autenticación: el cuerpo es el
// mismo para usuario inexistente, contraseña incorrecta o método equivocado.
func authError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "intente más tarde"})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "AUTH_FAILED", Message: "credenciales inválidas"})
}
