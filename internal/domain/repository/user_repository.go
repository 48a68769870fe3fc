package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain/entity"
)

// UserFilter predicados para el escaneo de usuarios (migrador y rutinas
// administrativas). Campos vacíos / nil no filtran.
type UserFilter struct {
	Role        string
	LoginMethod string
	IsActive    *bool
}

// UserPatch conjunto parcial de campos a actualizar. Solo los punteros no nil
// se aplican; updated_at se actualiza siempre en la misma operación.
type UserPatch struct {
	DisplayName  *string
	Role         *string
	IsActive     *bool
	LoginMethod  *string
	PasswordHash *string
	Facial       *entity.FacialCredential
	LastLogin    *time.Time
}

// Empty indica si el patch no modifica ningún campo.
func (p UserPatch) Empty() bool {
	return p.DisplayName == nil && p.Role == nil && p.IsActive == nil &&
		p.LoginMethod == nil && p.PasswordHash == nil && p.Facial == nil && p.LastLogin == nil
}

// UserRepository define el puerto de persistencia para UserRecord (DIP).
//
// Contrato de errores: búsqueda sin resultado → domain.ErrUserNotFound;
// violación de unicidad de email → domain.ErrDuplicateEmail; fallo de conexión
// u otro error transitorio → envuelve domain.ErrStoreUnavailable. El caller
// siempre puede distinguir "no existe" de "no pude preguntar" con errors.Is.
type UserRepository interface {
	Create(ctx context.Context, user *entity.UserRecord) error
	GetByID(ctx context.Context, id string) (*entity.UserRecord, error)
	// GetByEmail busca por email ya normalizado (trim + minúsculas).
	GetByEmail(ctx context.Context, email string) (*entity.UserRecord, error)
	Update(ctx context.Context, user *entity.UserRecord) error
	// UpdatePartial aplica un conjunto parcial de campos y actualiza updated_at
	// en la misma operación.
	UpdatePartial(ctx context.Context, id string, patch UserPatch) error
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.UserRecord, error)
	Delete(ctx context.Context, id string) error
}
