package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Identidad-api/internal/application/auth"
	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/application/usecase"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ResetSvc     *credential.ResetService
	CredentialUC *credential.Manager
	UserUC       *usecase.UserUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.ResetSvc)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Credenciales del usuario autenticado
	me := protected.Group("/users/me")
	credentialHandler := NewCredentialHandler(deps.CredentialUC)
	me.Post("/facial", credentialHandler.EnrollFacial)
	me.Put("/login-method", credentialHandler.SetLoginMethod)
	me.Put("/password", credentialHandler.ChangePassword)

	// Administración de usuarios (solo admin)
	users := protected.Group("/users", RequireRole(entity.RoleAdmin))
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Delete("/:id", userHandler.Deactivate)
}
