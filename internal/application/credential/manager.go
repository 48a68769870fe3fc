package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

// MinPasswordLenDefault largo mínimo de contraseña si la configuración no define otro.
const MinPasswordLenDefault = 8

// Manager orquesta el ciclo de vida de credenciales: alta/verificación/rotación
// de contraseña, enrolamiento y verificación facial, y el cambio de método de
// login activo. El camino de verificación se elige según LoginMethod del usuario.
type Manager struct {
	users          repository.UserRepository
	hasher         *Hasher
	matcher        FacialMatcher
	minPasswordLen int
	now            func() time.Time
}

// NewManager construye el manager. matcher puede ser nil si el despliegue no
// habilita login facial (VerifyFacial devolverá error en ese caso).
func NewManager(users repository.UserRepository, hasher *Hasher, matcher FacialMatcher, minPasswordLen int) *Manager {
	if minPasswordLen <= 0 {
		minPasswordLen = MinPasswordLenDefault
	}
	return &Manager{
		users:          users,
		hasher:         hasher,
		matcher:        matcher,
		minPasswordLen: minPasswordLen,
		now:            time.Now,
	}
}

// checkPolicy valida el texto plano contra la política mínima.
func (m *Manager) checkPolicy(plaintext string) error {
	if plaintext == "" || len(plaintext) < m.minPasswordLen {
		return domain.ErrWeakCredential
	}
	return nil
}

// SetPassword valida la política, hashea y persiste la contraseña, y deja
// password como método de login activo. ErrWeakCredential si la política no se
// cumple, ErrUserNotFound si el usuario no existe.
func (m *Manager) SetPassword(ctx context.Context, userID, plaintext string) error {
	if err := m.checkPolicy(plaintext); err != nil {
		return err
	}
	hash, err := m.hasher.Hash(plaintext)
	if err != nil {
		return err
	}
	method := entity.LoginMethodPassword
	return m.users.UpdatePartial(ctx, userID, repository.UserPatch{
		PasswordHash: &hash,
		LoginMethod:  &method,
	})
}

// VerifyPassword normaliza el email, busca el usuario y verifica la contraseña.
// Todo fallo del camino de autenticación (usuario inexistente, inactivo, sin
// hash retenido o contraseña incorrecta) devuelve el mismo ErrAuthFailure, con
// una verificación quemada cuando no hay hash real para igualar la latencia.
// En éxito actualiza LastLogin y devuelve el registro; en fallo no muta nada.
func (m *Manager) VerifyPassword(ctx context.Context, email, plaintext string) (*entity.UserRecord, error) {
	user, err := m.users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			m.hasher.Burn(plaintext)
			return nil, domain.ErrAuthFailure
		}
		return nil, err
	}
	if !user.IsActive || !user.HasPassword() {
		m.hasher.Burn(plaintext)
		return nil, domain.ErrAuthFailure
	}
	if !m.hasher.Verify(plaintext, user.PasswordHash) {
		return nil, domain.ErrAuthFailure
	}
	return user, m.touchLastLogin(ctx, user)
}

// EnrollFacial guarda el descriptor con su fecha de registro y metadata de
// captura. No cambia el método de login: el usuario sigue autenticándose por
// contraseña hasta que opte explícitamente con SetLoginMethod.
func (m *Manager) EnrollFacial(ctx context.Context, userID string, descriptor []float64, metadata string) error {
	if len(descriptor) == 0 {
		return fmt.Errorf("%w: descriptor vacío", domain.ErrInvalidInput)
	}
	return m.users.UpdatePartial(ctx, userID, repository.UserPatch{
		Facial: &entity.FacialCredential{
			Descriptor:   descriptor,
			RegisteredAt: m.now(),
			Metadata:     metadata,
		},
	})
}

// SetLoginMethod cambia el método de login activo. ErrMissingCredential si se
// cambia a facial sin enrolamiento previo o a password sin hash almacenado.
// El cambio nunca destruye la credencial del otro método.
func (m *Manager) SetLoginMethod(ctx context.Context, userID, method string) error {
	if !entity.ValidLoginMethod(method) {
		return fmt.Errorf("%w: método de login %q", domain.ErrInvalidInput, method)
	}
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if method == entity.LoginMethodFacial && !user.HasFacial() {
		return domain.ErrMissingCredential
	}
	if method == entity.LoginMethodPassword && !user.HasPassword() {
		return domain.ErrMissingCredential
	}
	return m.users.UpdatePartial(ctx, userID, repository.UserPatch{LoginMethod: &method})
}

// VerifyFacial delega el cálculo de distancia al matcher externo pero es dueño
// de la decisión aceptar/rechazar contra el umbral, y de actualizar LastLogin
// en aceptación. Usuario inexistente, inactivo o sin enrolamiento → ErrAuthFailure.
func (m *Manager) VerifyFacial(ctx context.Context, userID string, candidate []float64, matchThreshold float64) (bool, error) {
	if m.matcher == nil {
		return false, fmt.Errorf("login facial no habilitado: %w", domain.ErrMissingCredential)
	}
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrAuthFailure
		}
		return false, err
	}
	if !user.IsActive || !user.HasFacial() {
		return false, domain.ErrAuthFailure
	}
	distance, err := m.matcher.Distance(user.Facial.Descriptor, candidate)
	if err != nil {
		return false, fmt.Errorf("comparar descriptores: %w", err)
	}
	if distance > matchThreshold {
		return false, nil
	}
	return true, m.touchLastLogin(ctx, user)
}

// touchLastLogin registra el instante de autenticación exitosa en el registro
// (en memoria y persistido en la misma operación).
func (m *Manager) touchLastLogin(ctx context.Context, user *entity.UserRecord) error {
	now := m.now()
	if err := m.users.UpdatePartial(ctx, user.ID, repository.UserPatch{LastLogin: &now}); err != nil {
		return err
	}
	user.LastLogin = &now
	user.UpdatedAt = now
	return nil
}
