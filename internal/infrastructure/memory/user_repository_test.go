package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
	"github.com/jhoicas/Identidad-api/internal/infrastructure/memory"
)

func seed(t *testing.T, repo *memory.UserRepo, id, email string) *entity.UserRecord {
	t.Helper()
	u := &entity.UserRecord{
		ID:          id,
		Email:       email,
		Role:        entity.RoleStandard,
		IsActive:    true,
		LoginMethod: entity.LoginMethodPassword,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

// Mismo contrato de errores que el adaptador PostgreSQL.
func TestUserRepo_ContratosDeError(t *testing.T) {
	repo := memory.NewUserRepository()
	seed(t, repo, "u1", "ana@ejemplo.com")

	_, err := repo.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByEmail(context.Background(), "nadie@ejemplo.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = repo.Create(context.Background(), &entity.UserRecord{ID: "u2", Email: "ANA@ejemplo.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail,
		"el duplicado se detecta sobre el email normalizado")

	err = repo.UpdatePartial(context.Background(), "no-existe", repository.UserPatch{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// Los registros devueltos son copias: mutar el resultado no toca el almacén.
func TestUserRepo_DevuelveCopias(t *testing.T) {
	repo := memory.NewUserRepository()
	u := seed(t, repo, "u1", "ana@ejemplo.com")
	require.NoError(t, repo.UpdatePartial(context.Background(), u.ID, repository.UserPatch{
		Facial: &entity.FacialCredential{Descriptor: []float64{0.1, 0.2}, RegisteredAt: time.Now()},
	}))

	leido, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	leido.Email = "mutado@ejemplo.com"
	leido.Facial.Descriptor[0] = 99

	releido, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@ejemplo.com", releido.Email)
	assert.Equal(t, 0.1, releido.Facial.Descriptor[0],
		"mutar el descriptor devuelto no debe tocar el almacenado")
}

func TestUserRepo_UpdatePartial_BumpeaUpdatedAt(t *testing.T) {
	repo := memory.NewUserRepository()
	u := seed(t, repo, "u1", "ana@ejemplo.com")
	antes, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	nombre := "Ana García"
	require.NoError(t, repo.UpdatePartial(context.Background(), u.ID, repository.UserPatch{DisplayName: &nombre}))

	despues, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana García", despues.DisplayName)
	assert.True(t, despues.UpdatedAt.After(antes.UpdatedAt),
		"toda escritura debe avanzar UpdatedAt")
}

func TestUserRepo_List_RespetaLimiteYOffset(t *testing.T) {
	repo := memory.NewUserRepository()
	seed(t, repo, "u1", "uno@ejemplo.com")
	seed(t, repo, "u2", "dos@ejemplo.com")
	seed(t, repo, "u3", "tres@ejemplo.com")

	pagina, err := repo.List(context.Background(), repository.UserFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, pagina, 2)

	resto, err := repo.List(context.Background(), repository.UserFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, resto, 1)

	vacio, err := repo.List(context.Background(), repository.UserFilter{}, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, vacio)
}
