package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/application/dto"
	"github.com/jhoicas/Identidad-api/internal/domain"
)

// CredentialHandler maneja el enrolamiento facial y el cambio de método de
// login del usuario autenticado.
type CredentialHandler struct {
	manager *credential.Manager
}

// NewCredentialHandler construye el handler de credenciales.
func NewCredentialHandler(manager *credential.Manager) *CredentialHandler {
	return &CredentialHandler{manager: manager}
}

// EnrollFacial godoc
// @Summary      Enrolar credencial facial del usuario autenticado
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EnrollFacialRequest  true  "descriptor + metadata"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users/me/facial [post]
func (h *CredentialHandler) EnrollFacial(c *fiber.Ctx) error {
	var in dto.EnrollFacialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Descriptor) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "descriptor es requerido"})
	}
	if err := h.manager.EnrollFacial(c.Context(), GetUserID(c), in.Descriptor, in.Metadata); err != nil {
		return credentialError(c, err)
	}
	// El enrolamiento no cambia el método de login: el usuario opta con
	// PUT /api/users/me/login-method cuando quiera.
	return c.JSON(dto.MessageResponse{Message: "credencial facial registrada"})
}

// SetLoginMethod godoc
// @Summary      Cambiar el método de login activo
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetLoginMethodRequest  true  "password | facial"
// @Success      200   {object}  dto.MessageResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/me/login-method [put]
func (h *CredentialHandler) SetLoginMethod(c *fiber.Ctx) error {
	var in dto.SetLoginMethodRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Method == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "method es requerido"})
	}
	if err := h.manager.SetLoginMethod(c.Context(), GetUserID(c), in.Method); err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "MISSING_CREDENTIAL", Message: "falta la credencial para ese método"})
		}
		return credentialError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "método de login actualizado"})
}

// ChangePassword godoc
// @Summary      Cambiar la contraseña del usuario autenticado
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetPasswordRequest  false  "new_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users/me/password [put]
func (h *CredentialHandler) ChangePassword(c *fiber.Ctx) error {
	var in struct {
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.manager.SetPassword(c.Context(), GetUserID(c), in.NewPassword); err != nil {
		if errors.Is(err, domain.ErrWeakCredential) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "WEAK_PASSWORD", Message: "la contraseña no cumple la política mínima"})
		}
		return credentialError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

func credentialError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "intente más tarde"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
