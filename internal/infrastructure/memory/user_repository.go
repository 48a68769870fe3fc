package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria del puerto UserRepository. Se usa en
// tests unitarios y en entornos locales sin PostgreSQL; respeta el mismo
// contrato de errores que el adaptador real.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*entity.UserRecord
	byEmail map[string]string // email normalizado -> id
}

// NewUserRepository construye el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]*entity.UserRecord),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepo) Create(_ context.Context, user *entity.UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := entity.NormalizeEmail(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return domain.ErrDuplicateEmail
	}
	clone := cloneUser(user)
	clone.Email = email
	r.byID[user.ID] = clone
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepo) Update(_ context.Context, user *entity.UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	email := entity.NormalizeEmail(user.Email)
	if other, taken := r.byEmail[email]; taken && other != user.ID {
		return domain.ErrDuplicateEmail
	}
	delete(r.byEmail, current.Email)
	clone := cloneUser(user)
	clone.Email = email
	clone.UpdatedAt = time.Now()
	r.byID[user.ID] = clone
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepo) UpdatePartial(_ context.Context, id string, patch repository.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if patch.Empty() {
		return nil
	}
	if patch.DisplayName != nil {
		u.DisplayName = entity.NormalizeDisplayName(*patch.DisplayName)
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.LoginMethod != nil {
		u.LoginMethod = *patch.LoginMethod
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.LastLogin != nil {
		t := *patch.LastLogin
		u.LastLogin = &t
	}
	if patch.Facial != nil {
		f := *patch.Facial
		f.Descriptor = append([]float64(nil), patch.Facial.Descriptor...)
		u.Facial = &f
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) List(_ context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*entity.UserRecord
	for _, u := range r.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.LoginMethod != "" && u.LoginMethod != filter.LoginMethod {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		all = append(all, cloneUser(u))
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

func cloneUser(u *entity.UserRecord) *entity.UserRecord {
	clone := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		clone.LastLogin = &t
	}
	if u.Facial != nil {
		f := *u.Facial
		f.Descriptor = append([]float64(nil), u.Facial.Descriptor...)
		clone.Facial = &f
	}
	return &clone
}
