package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Identidad-api/internal/application/auth"
	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/application/dto"
	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

// UserUseCase aprovisionamiento y consulta administrativa de usuarios.
type UserUseCase struct {
	repo   repository.UserRepository
	hasher *credential.Hasher
	minLen int
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, hasher *credential.Hasher, minPasswordLen int) *UserUseCase {
	if minPasswordLen <= 0 {
		minPasswordLen = credential.MinPasswordLenDefault
	}
	return &UserUseCase{repo: repo, hasher: hasher, minLen: minPasswordLen}
}

// Create aprovisiona un usuario con credencial de contraseña y método password.
// ErrDuplicateEmail si el email ya existe; ErrWeakCredential si la contraseña
// no cumple la política.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if in.Password == "" || len(in.Password) < uc.minLen {
		return nil, domain.ErrWeakCredential
	}
	role := in.Role
	if role == "" {
		role = entity.RoleStandard
	}
	if !entity.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.UserRecord{
		ID:           uuid.New().String(),
		Email:        entity.NormalizeEmail(in.Email),
		DisplayName:  entity.NormalizeDisplayName(in.DisplayName),
		Role:         role,
		IsActive:     true,
		LoginMethod:  entity.LoginMethodPassword,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// List lista usuarios con paginación y filtros opcionales.
func (uc *UserUseCase) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]*dto.UserResponse, error) {
	users, err := uc.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, auth.ToUserResponse(u))
	}
	return out, nil
}

// Deactivate desactiva un usuario (soft delete administrativo).
func (uc *UserUseCase) Deactivate(ctx context.Context, id string) error {
	inactive := false
	return uc.repo.UpdatePartial(ctx, id, repository.UserPatch{IsActive: &inactive})
}
