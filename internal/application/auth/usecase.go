package auth

import (
	"context"
	"errors"

	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/application/dto"
	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
	"github.com/jhoicas/Identidad-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens de sesión.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase caso de uso de login: elige el camino de verificación según el
// método pedido, y en éxito emite el JWT de sesión.
type AuthUseCase struct {
	users           repository.UserRepository
	manager         *credential.Manager
	facialThreshold float64
	jwtCfg          JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, manager *credential.Manager, facialThreshold float64, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{users: users, manager: manager, facialThreshold: facialThreshold, jwtCfg: jwtCfg}
}

// Login verifica la credencial según el método y devuelve token + usuario.
// Todo fallo de autenticación sale como domain.ErrAuthFailure, sin distinguir
// usuario inexistente, contraseña incorrecta ni método equivocado.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	method := in.Method
	if method == "" {
		method = entity.LoginMethodPassword
	}

	var user *entity.UserRecord
	var err error
	switch method {
	case entity.LoginMethodPassword:
		user, err = uc.manager.VerifyPassword(ctx, in.Email, in.Password)
		if err != nil {
			return nil, err
		}
	case entity.LoginMethodFacial:
		user, err = uc.loginFacial(ctx, in)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrAuthFailure
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *ToUserResponse(user),
	}, nil
}

// loginFacial resuelve el usuario por email y verifica el descriptor contra el
// umbral configurado. El rechazo del matcher y el usuario inexistente producen
// el mismo ErrAuthFailure.
func (uc *AuthUseCase) loginFacial(ctx context.Context, in dto.LoginRequest) (*entity.UserRecord, error) {
	user, err := uc.users.GetByEmail(ctx, entity.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrAuthFailure
		}
		return nil, err
	}
	// El método activo debe ser facial: una cuenta en modo password no acepta
	// descriptores aunque tenga enrolamiento.
	if user.LoginMethod != entity.LoginMethodFacial {
		return nil, domain.ErrAuthFailure
	}
	ok, err := uc.manager.VerifyFacial(ctx, user.ID, in.Descriptor, uc.facialThreshold)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAuthFailure
	}
	return user, nil
}

// ToUserResponse mapea la entidad al DTO de salida (sin credenciales).
func ToUserResponse(u *entity.UserRecord) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           u.Role,
		IsActive:       u.IsActive,
		LoginMethod:    u.LoginMethod,
		FacialEnrolled: u.HasFacial(),
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
